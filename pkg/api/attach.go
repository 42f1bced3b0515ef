package api

import (
	"context"
	"log/slog"
	"strings"

	"github.com/made-ai/made/pkg/store"
)

// promoteAttachments consumes each staged upload named in tokens and
// binds it to nodeID, silently dropping tokens that are unknown/expired
// or staged by a different user (§4.6 "dropping entries whose owning
// user mismatches (silent skip, not fatal)"). It returns the
// comma-joined filenames of everything actually attached, ready to
// store on the node's attachment_filenames field.
func (s *Server) promoteAttachments(ctx context.Context, nodeID int, userID string, tokens []string) string {
	var filenames []string
	for _, token := range tokens {
		entry, err := s.staging.Take(token)
		if err != nil {
			slog.Warn("api: staged upload not found or expired", "token", token, "error", err)
			continue
		}
		if entry.UserID != userID {
			slog.Warn("api: staged upload owner mismatch, dropping", "token", token)
			continue
		}

		if _, err := s.store.Attach(ctx, store.AttachParams{
			NodeID:   nodeID,
			Filename: entry.Filename,
			MimeType: entry.MimeType,
			FileType: entry.FileType,
			Data:     entry.Data,
		}); err != nil {
			slog.Warn("api: failed to attach staged upload", "token", token, "error", err)
			continue
		}
		filenames = append(filenames, entry.Filename)
	}

	if len(filenames) == 0 {
		return ""
	}
	return strings.Join(filenames, ",")
}
