package api

import "github.com/gin-gonic/gin"

// extractUserID resolves the caller's identity from the upstream auth
// proxy's headers. User authentication itself is an external
// collaborator (§1 "Explicitly out of scope") — MADE only trusts
// whatever identity the boundary already established via the standard
// X-Forwarded-* reverse-proxy convention.
func extractUserID(c *gin.Context) string {
	if user := c.GetHeader("X-Forwarded-User"); user != "" {
		return user
	}
	if email := c.GetHeader("X-Forwarded-Email"); email != "" {
		return email
	}
	return "api-client"
}
