// Package api is the HTTP boundary of MADE (part of C6, the
// Deliberation Coordinator): it binds requests, resolves caller
// identity, instantiates the right engine, and pipes its event stream
// to the client via package events.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/made-ai/made/pkg/assembler"
	"github.com/made-ai/made/pkg/config"
	"github.com/made-ai/made/pkg/gateway"
	"github.com/made-ai/made/pkg/models"
	"github.com/made-ai/made/pkg/staging"
	"github.com/made-ai/made/pkg/store"
)

// Store is the subset of the Artifact Store the coordinator needs.
// Satisfied by *store.Store.
type Store interface {
	CreateConversation(ctx context.Context, p store.CreateConversationParams) (*models.Conversation, error)
	GetConversation(ctx context.Context, id int, ownerID string) (*models.Conversation, error)
	ListConversations(ctx context.Context, ownerID string) ([]models.ConversationSummary, error)
	ConversationCost(ctx context.Context, id int, ownerID string) (float64, error)
	CreateNode(ctx context.Context, p store.CreateNodeParams) (*models.Node, error)
	UpdateNodeCost(ctx context.Context, nodeID int, ownerID string, cost float64) (*models.Node, error)
	UpdateNodeAttachmentFilenames(ctx context.Context, nodeID int, manifest string) (*models.Node, error)
	GetNode(ctx context.Context, nodeID int) (*models.Node, error)
	Attach(ctx context.Context, p store.AttachParams) (*models.Attachment, error)
	AttachmentsOf(ctx context.Context, nodeID int) ([]models.Attachment, error)
	GetAttachmentData(ctx context.Context, attachmentID int, ownerID string) (*models.Attachment, []byte, error)
}

// Gateway is the subset of the LLM Gateway Adapter the engines need,
// threaded through unchanged from package engine.
type Gateway interface {
	Complete(ctx context.Context, model, userID, prompt string, attachments []gateway.Attachment) (*gateway.CompletionResult, error)
	UnsupportedAttachments(ctx context.Context, userID, modelID string, attachments []gateway.Attachment) []string
}

// Assembler is the subset of the Context Assembler the engines need.
type Assembler interface {
	AncestorAttachments(ctx context.Context, nodeID int, maxDepth int) ([]assembler.Attachment, error)
}

// Server wires the Artifact Store, Gateway Adapter, Context Assembler,
// upload staging map, and configured defaults into gin routes (§4.6,
// §6). One Server is built in cmd/madeserver/main.go and shared across
// all requests.
type Server struct {
	engine *gin.Engine
	http   *http.Server

	store     Store
	gateway   Gateway
	assembler Assembler
	staging   *staging.Map
	defaults  config.DefaultsConfig

	// apiKeyConfigured mirrors the Coordinator's "validates ... API-key
	// presence" contract (§4.6): set false when the gateway has no key
	// to present upstream, so requests fail fast with NoApiKey instead
	// of streaming partway then failing on the first LLM call.
	apiKeyConfigured bool
}

// NewServer builds a Server with all routes registered. apiKeyConfigured
// should reflect whether the gateway's configured API key env var was
// non-empty at startup.
func NewServer(st Store, gw Gateway, asm Assembler, stg *staging.Map, defaults config.DefaultsConfig, apiKeyConfigured bool) *Server {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())

	s := &Server{
		engine:           e,
		store:            st,
		gateway:          gw,
		assembler:        asm,
		staging:          stg,
		defaults:         defaults,
		apiKeyConfigured: apiKeyConfigured,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.POST("/council/run", s.handleCouncilRun)
	s.engine.POST("/superchat/chat", s.handleSuperChat)
	s.engine.POST("/upload", s.handleUpload)
	s.engine.GET("/attachments/:id", s.handleDownloadAttachment)
	s.engine.GET("/history", s.handleListHistory)
	s.engine.GET("/history/:conversation_id", s.handleGetConversation)
	s.engine.GET("/conversations/:id/cost", s.handleGetCost)
	s.engine.PUT("/nodes/:id/cost", s.handleUpdateNodeCost)
}

// Handler exposes the underlying http.Handler for tests and for the
// real listener in main.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves on addr (blocking).
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.engine}
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
