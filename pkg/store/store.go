// Package store is the Artifact Store (C1): it persists nodes and their
// parent links, assigns monotonic ids, and associates attachments. It is
// the only package that talks ent directly on behalf of the engines and
// the coordinator.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/made-ai/made/ent"
	"github.com/made-ai/made/ent/attachment"
	"github.com/made-ai/made/ent/conversation"
	"github.com/made-ai/made/ent/node"
	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/database"
	"github.com/made-ai/made/pkg/models"
)

// attachmentLimits are the per-type size ceilings from §3. "file" has no
// explicit limit in the spec; we bound it at the video ceiling (the
// largest declared limit) rather than leave it unbounded.
var attachmentLimits = map[models.FileType]int64{
	models.FileTypeImage: 10 * 1024 * 1024,
	models.FileTypePDF:   20 * 1024 * 1024,
	models.FileTypeText:  5 * 1024 * 1024,
	models.FileTypeAudio: 25 * 1024 * 1024,
	models.FileTypeVideo: 50 * 1024 * 1024,
	models.FileTypeFile:  50 * 1024 * 1024,
}

// Store wraps the database client with the Artifact Store contract.
type Store struct {
	db *database.Client
}

// New builds a Store over an already-connected database client.
func New(db *database.Client) *Store {
	return &Store{db: db}
}

// CreateConversationParams describes a new conversation container.
type CreateConversationParams struct {
	OwnerID string
	Method  models.Method
}

// CreateConversation persists a new conversation.
func (s *Store) CreateConversation(ctx context.Context, p CreateConversationParams) (*models.Conversation, error) {
	row, err := s.db.Conversation.Create().
		SetOwnerID(p.OwnerID).
		SetMethod(conversation.Method(p.Method)).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	c := conversationToModel(row)
	return &c, nil
}

// GetConversation fetches one conversation by id, enforcing ownership.
// A mismatched owner is reported as NotFound (not Forbidden) to avoid
// leaking existence, per §7.
func (s *Store) GetConversation(ctx context.Context, id int, ownerID string) (*models.Conversation, error) {
	row, err := s.db.Conversation.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, apierrors.ErrNotFound
		}
		return nil, fmt.Errorf("get conversation %d: %w", id, err)
	}
	if row.OwnerID != ownerID || row.DeletedAt != nil {
		return nil, apierrors.ErrNotFound
	}

	nodes, err := s.ListNodes(ctx, id)
	if err != nil {
		return nil, err
	}

	c := conversationToModel(row)
	c.Nodes = nodes
	return &c, nil
}

// ListConversations returns the owning user's non-deleted conversations,
// newest first.
func (s *Store) ListConversations(ctx context.Context, ownerID string) ([]models.ConversationSummary, error) {
	rows, err := s.db.Conversation.Query().
		Where(
			conversation.OwnerID(ownerID),
			conversation.DeletedAtIsNil(),
		).
		Order(ent.Desc(conversation.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	summaries := make([]models.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, models.ConversationSummary{
			ID:        row.ID,
			Method:    models.Method(row.Method),
			CreatedAt: row.CreatedAt,
			TotalCost: row.TotalCost,
		})
	}
	return summaries, nil
}

// SoftDeleteOldConversations marks conversations created more than
// olderThan ago as deleted, for the retention cleanup loop. It returns
// the number of rows affected.
func (s *Store) SoftDeleteOldConversations(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	n, err := s.db.Conversation.Update().
		Where(
			conversation.CreatedAtLT(cutoff),
			conversation.DeletedAtIsNil(),
		).
		SetDeletedAt(time.Now()).
		Save(ctx)
	if err != nil {
		return 0, fmt.Errorf("soft-delete old conversations: %w", err)
	}
	return n, nil
}

// ConversationCost sums actual_cost across a conversation's nodes.
func (s *Store) ConversationCost(ctx context.Context, id int, ownerID string) (float64, error) {
	conv, err := s.db.Conversation.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return 0, apierrors.ErrNotFound
		}
		return 0, fmt.Errorf("get conversation %d: %w", id, err)
	}
	if conv.OwnerID != ownerID {
		return 0, apierrors.ErrNotFound
	}

	rows, err := s.db.Node.Query().
		Where(node.ConversationID(id)).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("sum node costs: %w", err)
	}
	var total float64
	for _, r := range rows {
		total += r.ActualCost
	}
	return total, nil
}

// CreateNodeParams mirrors the create_node contract of §4.1.
type CreateNodeParams struct {
	ConversationID      int
	ParentID            *int
	Type                models.NodeType
	Content             string
	ModelName           string
	PromptSent          string
	AttachmentFilenames string
	ActualCost          float64
	Warnings            []string
}

// CreateNode assigns an id and timestamp, persists the node, and returns
// the complete record. Invariant §3-4 (actual_cost >= 0) is enforced
// here; parent-in-same-conversation (§3-2) and acyclicity (§3-3) are
// enforced by construction — callers only ever pass a parent id they
// just fetched from this same store within this conversation.
func (s *Store) CreateNode(ctx context.Context, p CreateNodeParams) (*models.Node, error) {
	if p.ActualCost < 0 {
		return nil, fmt.Errorf("%w: actual_cost must be non-negative, got %f", apierrors.ErrValidation, p.ActualCost)
	}

	create := s.db.Node.Create().
		SetConversationID(p.ConversationID).
		SetType(node.Type(p.Type)).
		SetContent(p.Content).
		SetModelName(p.ModelName).
		SetActualCost(p.ActualCost)

	if p.ParentID != nil {
		create = create.SetNillableParentID(p.ParentID)
	}
	if p.PromptSent != "" {
		create = create.SetPromptSent(p.PromptSent)
	}
	if p.AttachmentFilenames != "" {
		create = create.SetAttachmentFilenames(p.AttachmentFilenames)
	}
	if len(p.Warnings) > 0 {
		create = create.SetWarnings(p.Warnings)
	}

	row, err := create.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("create node: %w", err)
	}

	n := nodeToModel(row)
	return &n, nil
}

// UpdateNodeCost applies the bounded administrative cost-fix operation
// (PUT /nodes/{id}/cost), after checking the node's conversation belongs
// to ownerID.
func (s *Store) UpdateNodeCost(ctx context.Context, nodeID int, ownerID string, cost float64) (*models.Node, error) {
	if cost < 0 {
		return nil, fmt.Errorf("%w: actual_cost must be non-negative, got %f", apierrors.ErrValidation, cost)
	}

	row, err := s.db.Node.Get(ctx, nodeID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, apierrors.ErrNotFound
		}
		return nil, fmt.Errorf("get node %d: %w", nodeID, err)
	}

	conv, err := s.db.Conversation.Get(ctx, row.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("get owning conversation: %w", err)
	}
	if conv.OwnerID != ownerID {
		return nil, apierrors.ErrNotFound
	}

	updated, err := row.Update().SetActualCost(cost).Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("update node cost: %w", err)
	}

	n := nodeToModel(updated)
	return &n, nil
}

// UpdateNodeAttachmentFilenames patches a node's attachment_filenames
// manifest after attachments have been bound to it post-creation — used
// by the Coordinator when promoting staged uploads onto a freshly
// created root node (§4.6 "joins saved filenames into root's
// attachment_filenames").
func (s *Store) UpdateNodeAttachmentFilenames(ctx context.Context, nodeID int, manifest string) (*models.Node, error) {
	row, err := s.db.Node.Get(ctx, nodeID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, apierrors.ErrNotFound
		}
		return nil, fmt.Errorf("get node %d: %w", nodeID, err)
	}

	updated, err := row.Update().SetAttachmentFilenames(manifest).Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("update node attachment filenames: %w", err)
	}

	n := nodeToModel(updated)
	return &n, nil
}

// ListNodes returns a conversation's nodes in creation order (ascending
// id), each with its attachments embedded.
func (s *Store) ListNodes(ctx context.Context, conversationID int) ([]models.Node, error) {
	rows, err := s.db.Node.Query().
		Where(node.ConversationID(conversationID)).
		Order(ent.Asc(node.FieldID)).
		WithAttachments().
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	out := make([]models.Node, 0, len(rows))
	for _, row := range rows {
		n := nodeToModel(row)
		for _, a := range row.Edges.Attachments {
			n.Attachments = append(n.Attachments, attachmentToModel(a))
		}
		out = append(out, n)
	}
	return out, nil
}

// GetNode fetches a single node (no ownership check; callers that need
// one should check the owning conversation).
func (s *Store) GetNode(ctx context.Context, nodeID int) (*models.Node, error) {
	row, err := s.db.Node.Get(ctx, nodeID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, apierrors.ErrNotFound
		}
		return nil, fmt.Errorf("get node %d: %w", nodeID, err)
	}
	n := nodeToModel(row)
	return &n, nil
}

// AttachmentBlob fetches one attachment's raw bytes for internal use by
// the Context Assembler and engines (§4.3) — no ownership check, since
// callers already operate inside an authenticated deliberation whose
// owner was checked when the conversation/root node was loaded.
func (s *Store) AttachmentBlob(ctx context.Context, attachmentID int) ([]byte, error) {
	row, err := s.db.Attachment.Get(ctx, attachmentID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, apierrors.ErrNotFound
		}
		return nil, fmt.Errorf("get attachment %d: %w", attachmentID, err)
	}
	return row.FileData, nil
}

// AttachParams describes a blob to bind to a node.
type AttachParams struct {
	NodeID   int
	Filename string
	MimeType string
	FileType models.FileType
	Data     []byte
}

// Attach enforces the per-type size limit and known file_type, then
// persists the blob.
func (s *Store) Attach(ctx context.Context, p AttachParams) (*models.Attachment, error) {
	limit, known := attachmentLimits[p.FileType]
	if !known {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrUnsupportedType, p.FileType)
	}
	size := int64(len(p.Data))
	if size > limit {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrAttachmentTooLarge, p.Filename)
	}

	row, err := s.db.Attachment.Create().
		SetNodeID(p.NodeID).
		SetFilename(p.Filename).
		SetFileType(attachment.FileType(p.FileType)).
		SetMimeType(p.MimeType).
		SetFileSize(size).
		SetFileData(p.Data).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}

	a := attachmentToModel(row)
	return &a, nil
}

// AttachmentsOf returns every attachment bound to a node.
func (s *Store) AttachmentsOf(ctx context.Context, nodeID int) ([]models.Attachment, error) {
	rows, err := s.db.Attachment.Query().
		Where(attachment.NodeID(nodeID)).
		Order(ent.Asc(attachment.FieldID)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("attachments of node %d: %w", nodeID, err)
	}
	out := make([]models.Attachment, 0, len(rows))
	for _, row := range rows {
		out = append(out, attachmentToModel(row))
	}
	return out, nil
}

// GetAttachmentData fetches one attachment's bytes for download,
// enforcing that it belongs to a conversation owned by ownerID.
func (s *Store) GetAttachmentData(ctx context.Context, attachmentID int, ownerID string) (*models.Attachment, []byte, error) {
	row, err := s.db.Attachment.Get(ctx, attachmentID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, nil, apierrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get attachment %d: %w", attachmentID, err)
	}

	owningNode, err := s.db.Node.Get(ctx, row.NodeID)
	if err != nil {
		return nil, nil, fmt.Errorf("get owning node: %w", err)
	}
	conv, err := s.db.Conversation.Get(ctx, owningNode.ConversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("get owning conversation: %w", err)
	}
	if conv.OwnerID != ownerID {
		return nil, nil, apierrors.ErrNotFound
	}

	a := attachmentToModel(row)
	return &a, row.FileData, nil
}

func conversationToModel(row *ent.Conversation) models.Conversation {
	return models.Conversation{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Method:    models.Method(row.Method),
		CreatedAt: row.CreatedAt,
		TotalCost: row.TotalCost,
	}
}

func nodeToModel(row *ent.Node) models.Node {
	return models.Node{
		ID:                  row.ID,
		ConversationID:      row.ConversationID,
		ParentID:            row.ParentID,
		Type:                models.NodeType(row.Type),
		Content:             row.Content,
		ModelName:           row.ModelName,
		PromptSent:          row.PromptSent,
		AttachmentFilenames: row.AttachmentFilenames,
		ActualCost:          row.ActualCost,
		Warnings:            row.Warnings,
		CreatedAt:           row.CreatedAt,
	}
}

func attachmentToModel(row *ent.Attachment) models.Attachment {
	return models.Attachment{
		ID:       row.ID,
		NodeID:   row.NodeID,
		Filename: row.Filename,
		FileType: models.FileType(row.FileType),
		MimeType: row.MimeType,
		FileSize: row.FileSize,
	}
}
