package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/made-ai/made/pkg/assembler"
	"github.com/made-ai/made/pkg/gateway"
	"github.com/made-ai/made/pkg/models"
	"github.com/made-ai/made/pkg/store"
)

// fakeStore is an in-memory, concurrency-safe Store for engine unit
// tests, avoiding any dependency on ent/Postgres.
type fakeStore struct {
	mu     sync.Mutex
	nextID int32
	nodes  []models.Node
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 100}
}

func (f *fakeStore) CreateNode(_ context.Context, p store.CreateNodeParams) (*models.Node, error) {
	id := int(atomic.AddInt32(&f.nextID, 1))
	n := models.Node{
		ID:                  id,
		ConversationID:      p.ConversationID,
		ParentID:            p.ParentID,
		Type:                p.Type,
		Content:             p.Content,
		ModelName:           p.ModelName,
		PromptSent:          p.PromptSent,
		AttachmentFilenames: p.AttachmentFilenames,
		ActualCost:          p.ActualCost,
		Warnings:            p.Warnings,
	}
	f.mu.Lock()
	f.nodes = append(f.nodes, n)
	f.mu.Unlock()
	return &n, nil
}

func (f *fakeStore) byID(id int) *models.Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.nodes {
		if f.nodes[i].ID == id {
			return &f.nodes[i]
		}
	}
	return nil
}

func (f *fakeStore) snapshot() []models.Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

// erroringStore fails every CreateNode call, for testing the fatal
// store-error path.
type erroringStore struct{}

func (erroringStore) CreateNode(context.Context, store.CreateNodeParams) (*models.Node, error) {
	return nil, fmt.Errorf("boom")
}

// fakeGateway returns canned completions and optionally fails specific
// models, for testing both the happy path and the reified-error path.
type fakeGateway struct {
	mu          sync.Mutex
	calls       int
	failModels  map[string]bool
	replyPrefix string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failModels: map[string]bool{}}
}

func (f *fakeGateway) Complete(_ context.Context, model, _, prompt string, _ []gateway.Attachment) (*gateway.CompletionResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failModels[model] {
		return nil, &gateway.Error{Model: model, Message: "upstream unavailable"}
	}
	content := fmt.Sprintf("%sreply from %s to prompt of len %d", f.replyPrefix, model, len(prompt))
	return &gateway.CompletionResult{Content: content, ActualCost: 0.02}, nil
}

func (f *fakeGateway) UnsupportedAttachments(context.Context, string, string, []gateway.Attachment) []string {
	return nil
}

// fakeAssembler returns no attachments for every node, which is
// sufficient for engine-level phase/ordering tests; attachment
// inheritance itself is covered by pkg/assembler's own tests.
type fakeAssembler struct{}

func (fakeAssembler) AncestorAttachments(context.Context, int, int) ([]assembler.Attachment, error) {
	return nil, nil
}

func countByType(nodes []models.Node, t models.NodeType) int {
	n := 0
	for _, node := range nodes {
		if node.Type == t {
			n++
		}
	}
	return n
}

func drain(ch <-chan models.Event) []models.Event {
	var out []models.Event
	for e := range ch {
		out = append(out, e)
	}
	return out
}
