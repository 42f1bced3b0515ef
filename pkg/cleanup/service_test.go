package cleanup_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/made-ai/made/internal/testdb"
	"github.com/made-ai/made/pkg/cleanup"
	"github.com/made-ai/made/pkg/config"
	"github.com/made-ai/made/pkg/models"
	"github.com/made-ai/made/pkg/staging"
	"github.com/made-ai/made/pkg/store"
)

func newTestStore(t *testing.T) *store.Store {
	db := testdb.New(t)
	return store.New(db)
}

func TestStoreSoftDelete_RemovesConversationsPastRetention(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	_, err := s.CreateConversation(ctx, store.CreateConversationParams{OwnerID: "u1", Method: models.MethodEnsemble})
	require.NoError(t, err)

	// The conversation was just created; a retention window shorter
	// than the time since creation marks it deleted on the very next
	// pass, exercising the store call the service wires in.
	time.Sleep(5 * time.Millisecond)
	n, err := s.SoftDeleteOldConversations(ctx, 1*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	listed, err := s.ListConversations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, listed, "conversation past the retention window must be excluded from listings")
}

func TestService_PreservesRecentConversations(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	_, err := s.CreateConversation(ctx, store.CreateConversationParams{OwnerID: "u2", Method: models.MethodDAG})
	require.NoError(t, err)

	cfg := config.RetentionConfig{ConversationRetentionDays: 90, CleanupInterval: time.Hour}
	svc := cleanup.NewService(cfg, s, nil)
	svc.RunNow(ctx)

	listed, err := s.ListConversations(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, listed, 1, "a conversation well inside the retention window must survive a cleanup pass")
}

func TestService_PurgesExpiredStagingTokens(t *testing.T) {
	s := newTestStore(t)
	stg := staging.New(0, 10*1024*1024) // zero TTL: every staged entry is immediately expired
	entry, err := stg.Put("u1", "a.png", "image/png", models.FileTypeImage, []byte{1, 2, 3})
	require.NoError(t, err)
	require.NotEmpty(t, entry.Token)
	require.Equal(t, 1, stg.Len())

	cfg := config.RetentionConfig{ConversationRetentionDays: 90, CleanupInterval: time.Hour}
	svc := cleanup.NewService(cfg, s, stg)
	svc.RunNow(t.Context())

	assert.Equal(t, 0, stg.Len())
}

func TestService_StartStop(t *testing.T) {
	s := newTestStore(t)
	cfg := config.RetentionConfig{ConversationRetentionDays: 90, CleanupInterval: time.Hour}
	svc := cleanup.NewService(cfg, s, nil)

	svc.Start(t.Context())
	svc.Stop()
}
