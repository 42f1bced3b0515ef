package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/engine"
	"github.com/made-ai/made/pkg/events"
	"github.com/made-ai/made/pkg/models"
	"github.com/made-ai/made/pkg/store"
)

// applyCouncilDefaults fills omitted request fields from the configured
// defaults (§10 AMBIENT STACK "Defaults").
func (s *Server) applyCouncilDefaults(req *models.CouncilRunRequest) {
	if len(req.CouncilMembers) == 0 {
		req.CouncilMembers = s.defaults.CouncilMembers
	}
	if req.ChairmanModel == "" {
		req.ChairmanModel = s.defaults.ChairmanModel
	}
	if req.MaxIterations <= 0 {
		req.MaxIterations = s.defaults.MaxIterations
	}
}

// handleCouncilRun implements POST /council/run (§6, §4.6): validates
// identity and configuration up front, creates the conversation and
// root artifact, promotes staged attachments, picks the engine, and
// streams its events.
func (s *Server) handleCouncilRun(c *gin.Context) {
	userID := extractUserID(c)
	if !s.apiKeyConfigured {
		writeError(c, apierrors.ErrNoAPIKey)
		return
	}

	var req models.CouncilRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apierrors.NewFieldError("body", err.Error()))
		return
	}
	s.applyCouncilDefaults(&req)

	switch req.Method {
	case models.MethodDAG, models.MethodEnsemble, models.MethodDxO:
	default:
		writeError(c, apierrors.NewFieldError("method", "must be one of dag, ensemble, dxo"))
		return
	}
	if req.Method == models.MethodDxO && len(req.Roles) == 0 {
		writeError(c, apierrors.NewFieldError("roles", "DxO requires at least one role"))
		return
	}

	ctx := c.Request.Context()
	conv, err := s.store.CreateConversation(ctx, store.CreateConversationParams{OwnerID: userID, Method: req.Method})
	if err != nil {
		writeError(c, err)
		return
	}

	root, err := s.store.CreateNode(ctx, store.CreateNodeParams{
		ConversationID: conv.ID,
		Type:           models.NodeTypeRoot,
		Content:        req.Prompt,
		ModelName:      "user",
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if manifest := s.promoteAttachments(ctx, root.ID, userID, req.AttachmentIDs); manifest != "" {
		updated, err := s.store.UpdateNodeAttachmentFilenames(ctx, root.ID, manifest)
		if err != nil {
			writeError(c, err)
			return
		}
		root = updated
	}

	deps := engine.Deps{Store: s.store, Gateway: s.gateway, Assembler: s.assembler, UserID: userID}

	var run func(ctx context.Context) <-chan models.Event
	switch req.Method {
	case models.MethodEnsemble:
		run = engine.NewEnsemble(deps, conv.ID, root, req.CouncilMembers, req.ChairmanModel).Run
	case models.MethodDAG:
		run = engine.NewDAG(deps, conv.ID, root, req.CouncilMembers, req.ChairmanModel).Run
	case models.MethodDxO:
		run = engine.NewDxO(deps, conv.ID, root, req.Roles, req.MaxIterations).Run
	}

	s.stream(c, conv.ID, *root, run)
}

// stream writes the Coordinator-owned start/root events, then forwards
// an engine's event channel verbatim until it closes (§4.5, §4.6).
// run is invoked through safeRun; see there for which panics are
// recovered.
func (s *Server) stream(c *gin.Context, conversationID int, root models.Node, run func(ctx context.Context) <-chan models.Event) {
	sw, err := events.NewWriter(c.Writer)
	if err != nil {
		writeError(c, fmt.Errorf("streaming unsupported: %w", err))
		return
	}

	if err := sw.Send(models.StartEvent(conversationID)); err != nil {
		return
	}
	if err := sw.Send(models.NodeEvent(root)); err != nil {
		return
	}

	ctx := c.Request.Context()
	ch := s.safeRun(ctx, run)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := sw.Send(e); err != nil {
				return
			}
		}
	}
}

// safeRun invokes an engine's Run and forwards its events. A panic
// raised by the Run call itself or while forwarding is recovered into a
// terminal error event. A panic inside a goroutine that Run starts is
// not recovered here and terminates the process.
func (s *Server) safeRun(ctx context.Context, run func(ctx context.Context) <-chan models.Event) <-chan models.Event {
	out := make(chan models.Event, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- models.ErrorEvent(fmt.Sprintf("internal error: %v", r))
				close(out)
			}
		}()
		for e := range run(ctx) {
			out <- e
		}
		close(out)
	}()
	return out
}
