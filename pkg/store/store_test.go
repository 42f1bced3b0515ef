package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/made-ai/made/internal/testdb"
	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/models"
	"github.com/made-ai/made/pkg/store"
)

func newTestStore(t *testing.T) *store.Store {
	db := testdb.New(t)
	return store.New(db)
}

func TestCreateNode_AssignsMonotonicIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	conv, err := s.CreateConversation(ctx, store.CreateConversationParams{OwnerID: "u1", Method: models.MethodEnsemble})
	require.NoError(t, err)

	root, err := s.CreateNode(ctx, store.CreateNodeParams{
		ConversationID: conv.ID, Type: models.NodeTypeRoot, Content: "hello", ModelName: "user",
	})
	require.NoError(t, err)

	child, err := s.CreateNode(ctx, store.CreateNodeParams{
		ConversationID: conv.ID, ParentID: &root.ID, Type: models.NodeTypeResearch,
		Content: "reply", ModelName: "gpt-4o", ActualCost: 0.01,
	})
	require.NoError(t, err)

	assert.Greater(t, child.ID, root.ID)
	assert.Equal(t, root.ID, *child.ParentID)

	nodes, err := s.ListNodes(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, root.ID, nodes[0].ID)
	assert.Equal(t, child.ID, nodes[1].ID)
}

func TestCreateNode_RejectsNegativeCost(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	conv, err := s.CreateConversation(ctx, store.CreateConversationParams{OwnerID: "u1", Method: models.MethodEnsemble})
	require.NoError(t, err)

	_, err = s.CreateNode(ctx, store.CreateNodeParams{
		ConversationID: conv.ID, Type: models.NodeTypeRoot, Content: "x", ModelName: "user", ActualCost: -1,
	})
	require.ErrorIs(t, err, apierrors.ErrValidation)
}

func TestAttach_EnforcesSizeLimitsAndKnownTypes(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	conv, err := s.CreateConversation(ctx, store.CreateConversationParams{OwnerID: "u1", Method: models.MethodEnsemble})
	require.NoError(t, err)
	root, err := s.CreateNode(ctx, store.CreateNodeParams{
		ConversationID: conv.ID, Type: models.NodeTypeRoot, Content: "x", ModelName: "user",
	})
	require.NoError(t, err)

	oversizeText := make([]byte, 6*1024*1024)
	_, err = s.Attach(ctx, store.AttachParams{
		NodeID: root.ID, Filename: "big.txt", MimeType: "text/plain",
		FileType: models.FileTypeText, Data: oversizeText,
	})
	require.ErrorIs(t, err, apierrors.ErrAttachmentTooLarge)

	att, err := s.Attach(ctx, store.AttachParams{
		NodeID: root.ID, Filename: "small.txt", MimeType: "text/plain",
		FileType: models.FileTypeText, Data: []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), att.FileSize)

	got, data, err := s.GetAttachmentData(ctx, att.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "small.txt", got.Filename)

	_, _, err = s.GetAttachmentData(ctx, att.ID, "someone-else")
	require.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestGetConversation_HidesOtherOwnersConversations(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	conv, err := s.CreateConversation(ctx, store.CreateConversationParams{OwnerID: "owner", Method: models.MethodDAG})
	require.NoError(t, err)

	_, err = s.GetConversation(ctx, conv.ID, "intruder")
	require.ErrorIs(t, err, apierrors.ErrNotFound)

	got, err := s.GetConversation(ctx, conv.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
}

func TestUpdateNodeCost_ChecksOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	conv, err := s.CreateConversation(ctx, store.CreateConversationParams{OwnerID: "owner", Method: models.MethodDAG})
	require.NoError(t, err)
	root, err := s.CreateNode(ctx, store.CreateNodeParams{
		ConversationID: conv.ID, Type: models.NodeTypeRoot, Content: "x", ModelName: "user",
	})
	require.NoError(t, err)

	_, err = s.UpdateNodeCost(ctx, root.ID, "intruder", 1.23)
	require.ErrorIs(t, err, apierrors.ErrNotFound)

	updated, err := s.UpdateNodeCost(ctx, root.ID, "owner", 1.23)
	require.NoError(t, err)
	assert.Equal(t, 1.23, updated.ActualCost)
}
