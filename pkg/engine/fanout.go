package engine

import (
	"context"
	"sync"

	"github.com/made-ai/made/pkg/models"
)

// fanOut dispatches n independent calls concurrently and joins on all of
// them before returning, the fan-out/fan-in phase-barrier discipline of
// §4.4 and §5 ("Phase barriers are explicit await-all joins"). Each
// dispatch that succeeds emits its node event onto events as soon as it
// completes — order across siblings is unspecified, matching §4.5's
// ordering guarantee that within-phase events may interleave freely.
//
// Grounded on the teacher's pkg/agent/orchestrator.SubAgentRunner
// (goroutine-per-task plus a shared results channel), simplified from
// that runner's dynamic dispatch/cancel/reservation machinery down to a
// single static join: every engine phase here dispatches a known-size
// batch once and waits for all of it, it never adds work mid-flight.
func fanOut(ctx context.Context, n int, events chan<- models.Event, dispatch func(ctx context.Context, idx int) (*models.Node, error)) ([]*models.Node, error) {
	results := make([]*models.Node, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			node, err := dispatch(ctx, i)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = node
			events <- models.NodeEvent(*node)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// contents extracts the Content field of every non-nil node, in slice
// order, for bundling into a downstream prompt.
func contents(nodes []*models.Node) []string {
	var out []string
	for _, n := range nodes {
		if n != nil {
			out = append(out, n.Content)
		}
	}
	return out
}
