package engine

import (
	"context"

	"github.com/made-ai/made/pkg/models"
)

// DAGEngine is the four-serial-phase engine with a parallel fan-out
// inside each middle phase (§4.4.2): coordinator plans, researchers
// investigate in parallel, critics review the bundled findings in
// parallel, and the chairman synthesizes.
type DAGEngine struct {
	deps           Deps
	conversationID int
	root           *models.Node
	councilMembers []string
	chairmanModel  string
}

// NewDAG builds a DAG engine over an already-persisted root node.
func NewDAG(deps Deps, conversationID int, root *models.Node, councilMembers []string, chairmanModel string) *DAGEngine {
	return &DAGEngine{
		deps:           deps,
		conversationID: conversationID,
		root:           root,
		councilMembers: councilMembers,
		chairmanModel:  chairmanModel,
	}
}

// Run executes the four-phase DAG protocol. With zero council members
// the research and critique bundles are simply empty and the plan and
// synthesis phases still run (§8 boundary test).
func (e *DAGEngine) Run(ctx context.Context) <-chan models.Event {
	out := make(chan models.Event, 8)
	go func() {
		defer close(out)

		out <- models.StatusEvent("Coordinating plan...")
		plan, err := e.deps.dispatchSingle(ctx, e.conversationID, e.root.ID, e.chairmanModel, dagPlanPrompt(e.root.Content), models.NodeTypePlan)
		if err != nil {
			out <- models.ErrorEvent(err.Error())
			return
		}
		out <- models.NodeEvent(*plan)

		out <- models.StatusEvent("Researching against the plan...")
		researchNodes, err := fanOut(ctx, len(e.councilMembers), out, func(ctx context.Context, i int) (*models.Node, error) {
			return e.deps.dispatchParallel(ctx, e.conversationID, plan.ID, e.councilMembers[i], dagResearchPrompt(plan.Content), models.NodeTypeResearch, "research")
		})
		if err != nil {
			out <- models.ErrorEvent(err.Error())
			return
		}
		researchContents := contents(researchNodes)

		out <- models.StatusEvent("Critiquing findings...")
		critiqueNodes, err := fanOut(ctx, len(e.councilMembers), out, func(ctx context.Context, i int) (*models.Node, error) {
			return e.deps.dispatchParallel(ctx, e.conversationID, plan.ID, e.councilMembers[i], dagCritiqueBundlePrompt(plan.Content, researchContents), models.NodeTypeCritique, "critique")
		})
		if err != nil {
			out <- models.ErrorEvent(err.Error())
			return
		}
		critiqueContents := contents(critiqueNodes)

		out <- models.StatusEvent("Synthesizing final answer...")
		synthesis, err := e.deps.dispatchSingle(ctx, e.conversationID, plan.ID, e.chairmanModel,
			dagSynthesisPrompt(plan.Content, researchContents, critiqueContents), models.NodeTypeSynthesis)
		if err != nil {
			out <- models.ErrorEvent(err.Error())
			return
		}
		out <- models.NodeEvent(*synthesis)
		out <- models.DoneEvent()
	}()
	return out
}
