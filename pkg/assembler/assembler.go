// Package assembler is the Context Assembler (C3): it walks the
// artifact DAG upward from a node to aggregate inherited attachments,
// bounded by depth (§4.3). Prompt text is composed by the engines.
package assembler

import (
	"context"
	"fmt"
	"strings"

	"github.com/made-ai/made/pkg/models"
)

// DefaultMaxDepth is the bound used when a caller doesn't override it.
const DefaultMaxDepth = 3

// NodeStore is the subset of the Artifact Store the assembler needs.
// Satisfied by *store.Store.
type NodeStore interface {
	GetNode(ctx context.Context, nodeID int) (*models.Node, error)
	AttachmentsOf(ctx context.Context, nodeID int) ([]models.Attachment, error)
	AttachmentBlob(ctx context.Context, attachmentID int) ([]byte, error)
}

// Attachment pairs a stored attachment's metadata with its bytes, ready
// to hand to the Gateway Adapter for multimodal encoding.
type Attachment struct {
	models.Attachment
	Data []byte
}

// Assembler implements the ancestor-chain walk described in §4.3 and §9
// "Ancestor walk vs. graph with shared children": a node has at most one
// parent, so the walk is a simple linear traversal, never a fan-in merge.
type Assembler struct {
	store NodeStore
}

// New builds an Assembler over a NodeStore.
func New(store NodeStore) *Assembler {
	return &Assembler{store: store}
}

// AncestorAttachments walks parent pointers starting at node, accumulating
// each node's own attachments in encountered order, stopping once
// maxDepth nodes have been visited or a node's parent_id is NULL. A
// maxDepth <= 0 falls back to DefaultMaxDepth. Cycles are impossible by
// invariant §3-3, but the visited-id set is defensive against that
// invariant being violated upstream.
func (a *Assembler) AncestorAttachments(ctx context.Context, nodeID int, maxDepth int) ([]Attachment, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var out []Attachment
	visited := make(map[int]bool, maxDepth)

	currentID := nodeID
	for depth := 0; depth < maxDepth; depth++ {
		if visited[currentID] {
			break
		}
		visited[currentID] = true

		node, err := a.store.GetNode(ctx, currentID)
		if err != nil {
			return nil, fmt.Errorf("ancestor walk: get node %d: %w", currentID, err)
		}

		atts, err := a.store.AttachmentsOf(ctx, currentID)
		if err != nil {
			return nil, fmt.Errorf("ancestor walk: attachments of node %d: %w", currentID, err)
		}
		for _, att := range atts {
			data, err := a.store.AttachmentBlob(ctx, att.ID)
			if err != nil {
				return nil, fmt.Errorf("ancestor walk: blob for attachment %d: %w", att.ID, err)
			}
			out = append(out, Attachment{Attachment: att, Data: data})
		}

		if node.ParentID == nil {
			break
		}
		currentID = *node.ParentID
	}

	return out, nil
}

// Manifest joins attachment filenames with a comma, the wire shape the
// engines record in a created node's attachment_filenames field (§4.4
// "Shared engine contracts").
func Manifest(attachments []Attachment) string {
	if len(attachments) == 0 {
		return ""
	}
	names := make([]string, len(attachments))
	for i, a := range attachments {
		names[i] = a.Filename
	}
	return strings.Join(names, ",")
}
