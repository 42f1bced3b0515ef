// Package cleanup implements the retention/cleanup job described in
// SPEC_FULL.md §12: a background ticker that soft-deletes conversations
// past the configured retention window and purges expired
// upload-staging tokens, grounded on the teacher's ticker-based
// Service shape (pkg/cleanup in the donor repo) adapted from
// session/event retention to conversation/staging retention.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/made-ai/made/pkg/config"
)

// ConversationStore is the subset of the Artifact Store the cleanup
// loop needs. Satisfied by *store.Store.
type ConversationStore interface {
	SoftDeleteOldConversations(ctx context.Context, olderThan time.Duration) (int, error)
}

// StagingMap is the subset of the upload-staging map the cleanup loop
// needs. Satisfied by *staging.Map.
type StagingMap interface {
	PurgeExpired() int
}

// Service periodically enforces retention policy (§9 "Staging map
// lifetime"):
//   - Soft-deletes conversations older than the configured retention
//     window.
//   - Purges expired upload-staging tokens.
//
// Both operations are idempotent and safe to run from multiple
// processes against the same database.
type Service struct {
	config  config.RetentionConfig
	store   ConversationStore
	staging StagingMap

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService builds a cleanup Service. staging may be nil to disable
// staging-token purging (e.g. in tests that only exercise conversation
// retention).
func NewService(cfg config.RetentionConfig, store ConversationStore, staging StagingMap) *Service {
	return &Service{config: cfg, store: store, staging: staging}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("cleanup: service started",
		"conversation_retention_days", s.config.ConversationRetentionDays,
		"interval", s.config.CleanupInterval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("cleanup: service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

// RunNow executes one retention pass immediately, outside the ticker
// cadence. Exposed for an administrative trigger and for tests.
func (s *Service) RunNow(ctx context.Context) {
	s.runAll(ctx)
}

func (s *Service) runAll(ctx context.Context) {
	s.softDeleteOldConversations(ctx)
	s.purgeExpiredStaging()
}

func (s *Service) softDeleteOldConversations(ctx context.Context) {
	retention := time.Duration(s.config.ConversationRetentionDays) * 24 * time.Hour
	count, err := s.store.SoftDeleteOldConversations(ctx, retention)
	if err != nil {
		slog.Error("cleanup: soft-delete conversations failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("cleanup: soft-deleted old conversations", "count", count)
	}
}

func (s *Service) purgeExpiredStaging() {
	if s.staging == nil {
		return
	}
	if count := s.staging.PurgeExpired(); count > 0 {
		slog.Info("cleanup: purged expired staging tokens", "count", count)
	}
}
