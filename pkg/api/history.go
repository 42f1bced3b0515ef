package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/models"
)

// parseIntParam parses a gin path parameter as an int, reporting a
// validation error rather than panicking on malformed input.
func parseIntParam(c *gin.Context, name string) (int, error) {
	raw := c.Param(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.NewFieldError(name, "must be an integer")
	}
	return n, nil
}

// handleListHistory implements GET /history (§6): the caller's
// conversations, newest first, as lightweight summaries.
func (s *Server) handleListHistory(c *gin.Context) {
	userID := extractUserID(c)
	summaries, err := s.store.ListConversations(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// handleGetConversation implements GET /history/{conversation_id}
// (§6): the full node list for one conversation.
func (s *Server) handleGetConversation(c *gin.Context) {
	userID := extractUserID(c)
	id, err := parseIntParam(c, "conversation_id")
	if err != nil {
		writeError(c, err)
		return
	}

	conv, err := s.store.GetConversation(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// handleGetCost implements GET /conversations/{id}/cost (§6, §12
// "Cost aggregation endpoint").
func (s *Server) handleGetCost(c *gin.Context) {
	userID := extractUserID(c)
	id, err := parseIntParam(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	total, err := s.store.ConversationCost(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CostResponse{ConversationID: id, TotalCost: total})
}

// handleUpdateNodeCost implements PUT /nodes/{id}/cost (§6): the
// bounded administrative cost-fix operation (§3 "Lifecycle").
func (s *Server) handleUpdateNodeCost(c *gin.Context) {
	userID := extractUserID(c)
	id, err := parseIntParam(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	var req models.UpdateNodeCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apierrors.NewFieldError("actual_cost", err.Error()))
		return
	}

	node, err := s.store.UpdateNodeCost(c.Request.Context(), id, userID, req.ActualCost)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}
