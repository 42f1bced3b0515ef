package engine

import (
	"context"

	"github.com/made-ai/made/pkg/models"
)

// EnsembleEngine is the single-round parallel fan-out engine (§4.4.1):
// every council member researches the root prompt concurrently, then
// the chairman synthesizes an anonymized bundle of their findings.
type EnsembleEngine struct {
	deps           Deps
	conversationID int
	root           *models.Node
	councilMembers []string
	chairmanModel  string
}

// NewEnsemble builds an Ensemble engine over an already-persisted root
// node. SuperChat reuses this engine verbatim; only root.Content differs
// (the Coordinator prepends prior-turn context before calling Run).
func NewEnsemble(deps Deps, conversationID int, root *models.Node, councilMembers []string, chairmanModel string) *EnsembleEngine {
	return &EnsembleEngine{
		deps:           deps,
		conversationID: conversationID,
		root:           root,
		councilMembers: councilMembers,
		chairmanModel:  chairmanModel,
	}
}

// Run executes the two-phase Ensemble protocol, emitting events as
// artifacts are produced. The returned channel is closed once a
// terminal done/error event has been sent.
func (e *EnsembleEngine) Run(ctx context.Context) <-chan models.Event {
	out := make(chan models.Event, 8)
	go func() {
		defer close(out)

		out <- models.StatusEvent("Researching with council members...")
		researchNodes, err := fanOut(ctx, len(e.councilMembers), out, func(ctx context.Context, i int) (*models.Node, error) {
			prompt := ensembleResearchPrompt(e.root.Content)
			return e.deps.dispatchParallel(ctx, e.conversationID, e.root.ID, e.councilMembers[i], prompt, models.NodeTypeResearch, "research")
		})
		if err != nil {
			out <- models.ErrorEvent(err.Error())
			return
		}

		out <- models.StatusEvent("Synthesizing council findings...")
		prompt := ensembleSynthesisPrompt(e.root.Content, contents(researchNodes))
		synthesis, err := e.deps.dispatchSingle(ctx, e.conversationID, e.root.ID, e.chairmanModel, prompt, models.NodeTypeSynthesis)
		if err != nil {
			out <- models.ErrorEvent(err.Error())
			return
		}
		out <- models.NodeEvent(*synthesis)
		out <- models.DoneEvent()
	}()
	return out
}
