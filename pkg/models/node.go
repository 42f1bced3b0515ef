// Package models holds the wire-facing DTOs returned by the HTTP API and
// embedded in SSE events. They are deliberately decoupled from the
// generated ent types so the wire shape doesn't shift every time the
// schema gains a field.
package models

import "time"

// NodeType enumerates the kinds of reasoning artifact a conversation DAG
// can contain.
type NodeType string

const (
	NodeTypeRoot       NodeType = "root"
	NodeTypeUserTurn   NodeType = "user_turn"
	NodeTypePlan       NodeType = "plan"
	NodeTypeResearch   NodeType = "research"
	NodeTypeCritique   NodeType = "critique"
	NodeTypeSynthesis  NodeType = "synthesis"
	NodeTypeProposal   NodeType = "proposal"
	NodeTypeRefinement NodeType = "refinement"
	NodeTypeTestCases  NodeType = "test_cases"
	NodeTypeVerdict    NodeType = "verdict"
)

// Method identifies which deliberation engine produced (or will produce)
// a conversation's artifacts.
type Method string

const (
	MethodDAG       Method = "dag"
	MethodEnsemble  Method = "ensemble"
	MethodDxO       Method = "dxo"
	MethodSuperChat Method = "superchat"
)

// FileType enumerates the attachment kinds the gateway adapter knows how
// to encode.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypePDF   FileType = "pdf"
	FileTypeAudio FileType = "audio"
	FileTypeVideo FileType = "video"
	FileTypeText  FileType = "text"
	FileTypeFile  FileType = "file"
)

// Attachment is the wire representation of a stored blob, metadata only
// (file_data is never embedded in a Node payload; it is fetched
// separately via GET /attachments/{id}).
type Attachment struct {
	ID        int      `json:"id"`
	NodeID    int      `json:"node_id"`
	Filename  string   `json:"filename"`
	FileType  FileType `json:"file_type"`
	MimeType  string   `json:"mime_type"`
	FileSize  int64    `json:"file_size"`
}

// Node is the wire representation of one reasoning artifact.
type Node struct {
	ID                  int          `json:"id"`
	ConversationID      int          `json:"conversation_id"`
	ParentID            *int         `json:"parent_id"`
	Type                NodeType     `json:"type"`
	Content             string       `json:"content"`
	ModelName           string       `json:"model_name"`
	PromptSent          string       `json:"prompt_sent,omitempty"`
	AttachmentFilenames string       `json:"attachment_filenames,omitempty"`
	ActualCost          float64      `json:"actual_cost"`
	Warnings            []string     `json:"warnings,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	Attachments         []Attachment `json:"attachments,omitempty"`
}

// Conversation is the wire representation of a conversation, with its
// full node list for history detail views.
type Conversation struct {
	ID         int       `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Method     Method    `json:"method"`
	CreatedAt  time.Time `json:"created_at"`
	TotalCost  float64   `json:"total_cost"`
	Nodes      []Node    `json:"nodes,omitempty"`
}

// ConversationSummary is the lighter shape used by GET /history listings.
type ConversationSummary struct {
	ID        int       `json:"id"`
	Method    Method    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
	TotalCost float64   `json:"total_cost"`
}
