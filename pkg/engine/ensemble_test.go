package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/made-ai/made/pkg/models"
)

func TestEnsemble_OneModel_OneResearchOneSynthesis(t *testing.T) {
	fs := newFakeStore()
	deps := Deps{Store: fs, Gateway: newFakeGateway(), Assembler: fakeAssembler{}, UserID: "u1"}
	root := &models.Node{ID: 1, ConversationID: 1, Type: models.NodeTypeRoot, Content: "Capital of France?"}

	e := NewEnsemble(deps, 1, root, []string{"gpt-4o"}, "gpt-4o")
	events := drain(e.Run(context.Background()))

	require.NotEmpty(t, events)
	assert.Equal(t, models.EventDone, events[len(events)-1].Type)

	nodes := fs.snapshot()
	assert.Equal(t, 1, countByType(nodes, models.NodeTypeResearch))
	assert.Equal(t, 1, countByType(nodes, models.NodeTypeSynthesis))
}

func TestEnsemble_ParallelResearch_AllChildrenOfRoot(t *testing.T) {
	fs := newFakeStore()
	deps := Deps{Store: fs, Gateway: newFakeGateway(), Assembler: fakeAssembler{}, UserID: "u1"}
	root := &models.Node{ID: 1, ConversationID: 1, Type: models.NodeTypeRoot, Content: "x"}

	e := NewEnsemble(deps, 1, root, []string{"m1", "m2", "m3"}, "chair")
	drain(e.Run(context.Background()))

	for _, n := range fs.snapshot() {
		if n.Type == models.NodeTypeResearch {
			require.NotNil(t, n.ParentID)
			assert.Equal(t, root.ID, *n.ParentID)
		}
		if n.Type == models.NodeTypeSynthesis {
			require.NotNil(t, n.ParentID)
			assert.Equal(t, root.ID, *n.ParentID)
		}
	}
}

func TestEnsemble_GatewayFailureInResearch_ReifiedAsErrorNode(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway()
	gw.failModels["bad-model"] = true
	deps := Deps{Store: fs, Gateway: gw, Assembler: fakeAssembler{}, UserID: "u1"}
	root := &models.Node{ID: 1, ConversationID: 1, Type: models.NodeTypeRoot, Content: "x"}

	e := NewEnsemble(deps, 1, root, []string{"good-model", "bad-model"}, "chair")
	events := drain(e.Run(context.Background()))

	assert.Equal(t, models.EventDone, events[len(events)-1].Type)

	var sawError bool
	for _, n := range fs.snapshot() {
		if n.Type == models.NodeTypeResearch && n.ModelName == "bad-model" {
			sawError = true
			assert.Contains(t, n.Content, "Error conducting research:")
			assert.Equal(t, 0.0, n.ActualCost)
		}
	}
	assert.True(t, sawError, "expected an error-content research node for bad-model")
	assert.Equal(t, 1, countByType(fs.snapshot(), models.NodeTypeSynthesis), "synthesis should still proceed")
}

func TestEnsemble_FatalStoreError_EmitsTerminalError(t *testing.T) {
	deps := Deps{Store: erroringStore{}, Gateway: newFakeGateway(), Assembler: fakeAssembler{}, UserID: "u1"}
	root := &models.Node{ID: 1, ConversationID: 1, Type: models.NodeTypeRoot, Content: "x"}

	e := NewEnsemble(deps, 1, root, []string{"m1"}, "chair")
	events := drain(e.Run(context.Background()))

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, models.EventError, last.Type)
}
