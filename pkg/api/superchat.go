package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/engine"
	"github.com/made-ai/made/pkg/models"
	"github.com/made-ai/made/pkg/store"
)

// handleSuperChat implements POST /superchat/chat (§6). A request with
// no conversation_id starts a fresh conversation exactly like an
// ensemble /council/run; one naming conversation_id continues it by
// anchoring the new turn to its last synthesis node and composing the
// Ensemble prompt with that synthesis as prior-turn context (§9
// "Ambiguity — SuperChat's root node", resolved: continuation turns get
// their own user_turn node type rather than overloading root).
func (s *Server) handleSuperChat(c *gin.Context) {
	userID := extractUserID(c)
	if !s.apiKeyConfigured {
		writeError(c, apierrors.ErrNoAPIKey)
		return
	}

	var req models.SuperChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apierrors.NewFieldError("body", err.Error()))
		return
	}
	if len(req.CouncilMembers) == 0 {
		req.CouncilMembers = s.defaults.CouncilMembers
	}
	if req.ChairmanModel == "" {
		req.ChairmanModel = s.defaults.ChairmanModel
	}

	ctx := c.Request.Context()

	if req.ConversationID == nil {
		s.startSuperChat(c, ctx, userID, req)
		return
	}
	s.continueSuperChat(c, ctx, userID, req)
}

func (s *Server) startSuperChat(c *gin.Context, ctx context.Context, userID string, req models.SuperChatRequest) {
	conv, err := s.store.CreateConversation(ctx, store.CreateConversationParams{OwnerID: userID, Method: models.MethodSuperChat})
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
	s.finishAttachAndStream(c, ctx, conv.ID, root, userID, req.AttachmentIDs, req.CouncilMembers, req.ChairmanModel)
}

func (s *Server) continueSuperChat(c *gin.Context, ctx context.Context, userID string, req models.SuperChatRequest) {
	conv, err := s.store.GetConversation(ctx, *req.ConversationID, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	var priorSynthesis *models.Node
	for i := range conv.Nodes {
		if conv.Nodes[i].Type == models.NodeTypeSynthesis {
			n := conv.Nodes[i]
			priorSynthesis = &n
		}
	}
	if priorSynthesis == nil {
		writeError(c, apierrors.NewFieldError("conversation_id", "conversation has no synthesis node to continue from"))
		return
	}

	composed := engine.SuperChatPrompt(priorSynthesis.Content, req.Prompt)
	parentID := priorSynthesis.ID
	turn, err := s.store.CreateNode(ctx, store.CreateNodeParams{
		ConversationID: conv.ID,
		ParentID:       &parentID,
		Type:           models.NodeTypeUserTurn,
		Content:        composed,
		ModelName:      "user",
	})
	if err != nil {
		writeError(c, err)
		return
	}
	s.finishAttachAndStream(c, ctx, conv.ID, turn, userID, req.AttachmentIDs, req.CouncilMembers, req.ChairmanModel)
}

func (s *Server) finishAttachAndStream(c *gin.Context, ctx context.Context, conversationID int, root *models.Node, userID string, attachmentIDs, councilMembers []string, chairmanModel string) {
	if manifest := s.promoteAttachments(ctx, root.ID, userID, attachmentIDs); manifest != "" {
		updated, err := s.store.UpdateNodeAttachmentFilenames(ctx, root.ID, manifest)
		if err != nil {
			writeError(c, err)
			return
		}
		root = updated
	}

	deps := engine.Deps{Store: s.store, Gateway: s.gateway, Assembler: s.assembler, UserID: userID}
	run := engine.NewEnsemble(deps, conversationID, root, councilMembers, chairmanModel).Run
	s.stream(c, conversationID, *root, run)
}
