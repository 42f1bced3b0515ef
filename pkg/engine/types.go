// Package engine implements the three Deliberation Engines (C4):
// Ensemble, DAG, and DxO. Each shares one common shape — consume a root
// node plus configuration, emit an ordered stream of events while
// creating artifacts in the store (§4.4).
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/made-ai/made/pkg/assembler"
	"github.com/made-ai/made/pkg/gateway"
	"github.com/made-ai/made/pkg/models"
	"github.com/made-ai/made/pkg/store"
)

// Store is the subset of the Artifact Store the engines need. Satisfied
// by *store.Store.
type Store interface {
	CreateNode(ctx context.Context, p store.CreateNodeParams) (*models.Node, error)
}

// Gateway is the subset of the LLM Gateway Adapter the engines need.
// Satisfied by *gateway.Client.
type Gateway interface {
	Complete(ctx context.Context, model, userID, prompt string, attachments []gateway.Attachment) (*gateway.CompletionResult, error)
	UnsupportedAttachments(ctx context.Context, userID, modelID string, attachments []gateway.Attachment) []string
}

// Assembler is the subset of the Context Assembler the engines need.
// Satisfied by *assembler.Assembler.
type Assembler interface {
	AncestorAttachments(ctx context.Context, nodeID int, maxDepth int) ([]assembler.Attachment, error)
}

// Deps bundles the collaborators every engine is built from.
type Deps struct {
	Store     Store
	Gateway   Gateway
	Assembler Assembler
	UserID    string
}

func toGatewayAttachments(atts []assembler.Attachment) []gateway.Attachment {
	out := make([]gateway.Attachment, len(atts))
	for i, a := range atts {
		out[i] = gateway.Attachment{
			Filename: a.Filename,
			MimeType: a.MimeType,
			FileType: a.FileType,
			Data:     a.Data,
		}
	}
	return out
}

// assembleContext assembles the ancestor-chain attachments for
// originatingNodeID and returns both the gateway-ready blocks and the
// comma-joined manifest recorded on the created node (§4.4 "Shared
// engine contracts").
func (d Deps) assembleContext(ctx context.Context, originatingNodeID int) ([]gateway.Attachment, string, error) {
	atts, err := d.Assembler.AncestorAttachments(ctx, originatingNodeID, assembler.DefaultMaxDepth)
	if err != nil {
		return nil, "", fmt.Errorf("assemble context for node %d: %w", originatingNodeID, err)
	}
	return toGatewayAttachments(atts), assembler.Manifest(atts), nil
}

// dispatchSingle performs one LLM call on the critical path: a gateway
// failure is NOT swallowed, it propagates so the caller can turn it into
// a terminal stream error (§7 "Gateway errors in single-call phases").
func (d Deps) dispatchSingle(ctx context.Context, conversationID, originatingNodeID int, model, prompt string, nodeType models.NodeType) (*models.Node, error) {
	atts, manifest, err := d.assembleContext(ctx, originatingNodeID)
	if err != nil {
		return nil, err
	}
	warnings := d.Gateway.UnsupportedAttachments(ctx, d.UserID, model, atts)

	result, err := d.Gateway.Complete(ctx, model, d.UserID, prompt, atts)
	if err != nil {
		return nil, err
	}

	parentID := originatingNodeID
	node, err := d.Store.CreateNode(ctx, store.CreateNodeParams{
		ConversationID:      conversationID,
		ParentID:            &parentID,
		Type:                nodeType,
		Content:             result.Content,
		ModelName:           model,
		PromptSent:          strings.TrimSpace(prompt),
		AttachmentFilenames: manifest,
		ActualCost:          result.ActualCost,
		Warnings:            warnings,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s node: %w", nodeType, err)
	}
	return node, nil
}

// dispatchParallel performs one LLM call inside a fan-out phase: a
// gateway failure is reified as an error artifact (content prefixed per
// §4.4.3) rather than aborting the phase, so siblings still proceed
// (§7 "Gateway errors in parallel phases"). Only a store failure is
// returned as an error, since that's fatal regardless of phase (§7
// "Store errors").
func (d Deps) dispatchParallel(ctx context.Context, conversationID, originatingNodeID int, model, prompt string, nodeType models.NodeType, kindLabel string) (*models.Node, error) {
	atts, manifest, err := d.assembleContext(ctx, originatingNodeID)
	if err != nil {
		return nil, err
	}
	warnings := d.Gateway.UnsupportedAttachments(ctx, d.UserID, model, atts)

	result, callErr := d.Gateway.Complete(ctx, model, d.UserID, prompt, atts)

	var content string
	var cost float64
	if callErr != nil {
		content = fmt.Sprintf("Error conducting %s: %s", kindLabel, callErr)
		warnings = nil
	} else {
		content = result.Content
		cost = result.ActualCost
	}

	parentID := originatingNodeID
	node, err := d.Store.CreateNode(ctx, store.CreateNodeParams{
		ConversationID:      conversationID,
		ParentID:            &parentID,
		Type:                nodeType,
		Content:             content,
		ModelName:           model,
		PromptSent:          strings.TrimSpace(prompt),
		AttachmentFilenames: manifest,
		ActualCost:          cost,
		Warnings:            warnings,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s node: %w", nodeType, err)
	}
	return node, nil
}
