package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/assembler"
	"github.com/made-ai/made/pkg/config"
	"github.com/made-ai/made/pkg/gateway"
	"github.com/made-ai/made/pkg/models"
	"github.com/made-ai/made/pkg/staging"
	"github.com/made-ai/made/pkg/store"
)

// fakeStore is a minimal in-memory Store for api-layer tests, covering
// ownership checks the same way the real ent-backed store does.
type fakeStore struct {
	mu          sync.Mutex
	nextConvID  int
	nextNodeID  int
	nextAttID   int
	convs       map[int]*models.Conversation
	nodes       map[int]*models.Node
	attachments map[int]*models.Attachment
	attData     map[int][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		convs:       make(map[int]*models.Conversation),
		nodes:       make(map[int]*models.Node),
		attachments: make(map[int]*models.Attachment),
		attData:     make(map[int][]byte),
	}
}

func (f *fakeStore) CreateConversation(_ context.Context, p store.CreateConversationParams) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextConvID++
	c := &models.Conversation{ID: f.nextConvID, OwnerID: p.OwnerID, Method: p.Method}
	f.convs[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetConversation(_ context.Context, id int, ownerID string) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[id]
	if !ok || c.OwnerID != ownerID {
		return nil, apierrors.ErrNotFound
	}
	cc := *c
	for _, n := range f.nodes {
		if n.ConversationID == id {
			cc.Nodes = append(cc.Nodes, *n)
		}
	}
	return &cc, nil
}

func (f *fakeStore) ListConversations(_ context.Context, ownerID string) ([]models.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ConversationSummary
	for _, c := range f.convs {
		if c.OwnerID == ownerID {
			out = append(out, models.ConversationSummary{ID: c.ID, Method: c.Method, CreatedAt: c.CreatedAt, TotalCost: c.TotalCost})
		}
	}
	return out, nil
}

func (f *fakeStore) ConversationCost(_ context.Context, id int, ownerID string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[id]
	if !ok || c.OwnerID != ownerID {
		return 0, apierrors.ErrNotFound
	}
	var total float64
	for _, n := range f.nodes {
		if n.ConversationID == id {
			total += n.ActualCost
		}
	}
	return total, nil
}

func (f *fakeStore) CreateNode(_ context.Context, p store.CreateNodeParams) (*models.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextNodeID++
	n := &models.Node{
		ID:                  f.nextNodeID,
		ConversationID:      p.ConversationID,
		ParentID:            p.ParentID,
		Type:                p.Type,
		Content:             p.Content,
		ModelName:           p.ModelName,
		AttachmentFilenames: p.AttachmentFilenames,
		ActualCost:          p.ActualCost,
	}
	f.nodes[n.ID] = n
	return n, nil
}

func (f *fakeStore) UpdateNodeCost(_ context.Context, nodeID int, ownerID string, cost float64) (*models.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[nodeID]
	if !ok {
		return nil, apierrors.ErrNotFound
	}
	conv := f.convs[n.ConversationID]
	if conv == nil || conv.OwnerID != ownerID {
		return nil, apierrors.ErrNotFound
	}
	n.ActualCost = cost
	return n, nil
}

func (f *fakeStore) UpdateNodeAttachmentFilenames(_ context.Context, nodeID int, manifest string) (*models.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[nodeID]
	if !ok {
		return nil, apierrors.ErrNotFound
	}
	n.AttachmentFilenames = manifest
	return n, nil
}

func (f *fakeStore) GetNode(_ context.Context, nodeID int) (*models.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[nodeID]
	if !ok {
		return nil, apierrors.ErrNotFound
	}
	return n, nil
}

func (f *fakeStore) Attach(_ context.Context, p store.AttachParams) (*models.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextAttID++
	a := &models.Attachment{ID: f.nextAttID, NodeID: p.NodeID, Filename: p.Filename, FileType: p.FileType, MimeType: p.MimeType, FileSize: int64(len(p.Data))}
	f.attachments[a.ID] = a
	f.attData[a.ID] = p.Data
	return a, nil
}

func (f *fakeStore) AttachmentsOf(_ context.Context, nodeID int) ([]models.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Attachment
	for _, a := range f.attachments {
		if a.NodeID == nodeID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAttachmentData(_ context.Context, attachmentID int, ownerID string) (*models.Attachment, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attachments[attachmentID]
	if !ok {
		return nil, nil, apierrors.ErrNotFound
	}
	n := f.nodes[a.NodeID]
	if n == nil {
		return nil, nil, apierrors.ErrNotFound
	}
	conv := f.convs[n.ConversationID]
	if conv == nil || conv.OwnerID != ownerID {
		return nil, nil, apierrors.ErrNotFound
	}
	return a, f.attData[attachmentID], nil
}

// fakeGateway returns canned completions for every model.
type fakeGateway struct{}

func (fakeGateway) Complete(_ context.Context, model, _, prompt string, _ []gateway.Attachment) (*gateway.CompletionResult, error) {
	return &gateway.CompletionResult{Content: fmt.Sprintf("reply from %s", model), ActualCost: 0.01}, nil
}

func (fakeGateway) UnsupportedAttachments(context.Context, string, string, []gateway.Attachment) []string {
	return nil
}

// fakeAssembler returns no inherited attachments; attachment inheritance
// itself is covered by pkg/assembler's own tests.
type fakeAssembler struct{}

func (fakeAssembler) AncestorAttachments(context.Context, int, int) ([]assembler.Attachment, error) {
	return nil, nil
}

func newTestServer() (*Server, *fakeStore) {
	fs := newFakeStore()
	srv := NewServer(fs, fakeGateway{}, fakeAssembler{}, staging.New(5*time.Minute, 1<<20), config.DefaultsConfig{
		CouncilMembers: []string{"m1"},
		ChairmanModel:  "chair",
		MaxIterations:  5,
	}, true)
	return srv, fs
}
