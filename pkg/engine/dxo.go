package engine

import (
	"context"
	"fmt"

	"github.com/made-ai/made/pkg/models"
	"github.com/made-ai/made/pkg/store"
)

// approvalThreshold is the confidence score at or above which the DxO
// gatekeeper approves a draft (§4.4.3 Phase D).
const approvalThreshold = 85

// DxOEngine is the iterative adversarial debate-refine-gate loop
// (§4.4.3): a proposer drafts, experts review in parallel, the proposer
// refines against their feedback, and an optional critic gatekeeper
// scores the refinement until it clears approvalThreshold or the
// iteration budget is exhausted.
type DxOEngine struct {
	deps           Deps
	conversationID int
	root           *models.Node
	roles          []models.Role
	maxIterations  int
}

// NewDxO builds a DxO engine over an already-persisted root node.
// maxIterations <= 0 defaults to 5 per the HTTP contract's default (§6).
func NewDxO(deps Deps, conversationID int, root *models.Node, roles []models.Role, maxIterations int) *DxOEngine {
	if maxIterations <= 0 {
		maxIterations = 5
	}
	return &DxOEngine{
		deps:           deps,
		conversationID: conversationID,
		root:           root,
		roles:          roles,
		maxIterations:  maxIterations,
	}
}

// Run executes the DxO state machine described in §4.4.3:
//
//	[init] -> A-propose -> B-review -> C-refine -> D-gate
//	            -> (score>=85 OR i=max) ? E-verdict : B-review
//
// With no roles supplied, Run emits a single error event and closes
// (§8 boundary test).
func (e *DxOEngine) Run(ctx context.Context) <-chan models.Event {
	out := make(chan models.Event, 8)
	go func() {
		defer close(out)

		classified, err := ClassifyRoles(e.roles)
		if err != nil {
			out <- models.ErrorEvent(err.Error())
			return
		}

		out <- models.StatusEvent("Drafting initial proposal...")
		draft, err := e.deps.dispatchSingle(ctx, e.conversationID, e.root.ID, classified.Proposer.Model,
			dxoProposalPrompt(e.root.Content, classified.Proposer.Instructions), models.NodeTypeProposal)
		if err != nil {
			out <- models.ErrorEvent(err.Error())
			return
		}
		out <- models.NodeEvent(*draft)

		iterationsRun := 0
		confidence := 0

		for iteration := 1; iteration <= e.maxIterations; iteration++ {
			iterationsRun = iteration

			out <- models.StatusEvent(fmt.Sprintf("Expert review, iteration %d...", iteration))
			draftID := draft.ID
			reviewNodes, err := fanOut(ctx, len(classified.Experts), out, func(ctx context.Context, i int) (*models.Node, error) {
				expert := classified.Experts[i]
				nodeType := models.NodeTypeCritique
				kindLabel := "critique"
				if expert.IsQA {
					nodeType = models.NodeTypeTestCases
					kindLabel = "test cases"
				}
				prompt := dxoReviewPrompt(draft.Content, expert.Role.Instructions)
				return e.deps.dispatchParallel(ctx, e.conversationID, draftID, expert.Role.Model, prompt, nodeType, kindLabel)
			})
			if err != nil {
				out <- models.ErrorEvent(err.Error())
				return
			}

			var feedback []labeledFeedback
			for i, n := range reviewNodes {
				if n == nil {
					continue
				}
				feedback = append(feedback, labeledFeedback{RoleName: classified.Experts[i].Role.Name, Content: n.Content})
			}

			out <- models.StatusEvent("Refining draft...")
			refined, err := e.deps.dispatchSingle(ctx, e.conversationID, draft.ID, classified.Proposer.Model,
				dxoRefinementPrompt(draft.Content, feedback), models.NodeTypeRefinement)
			if err != nil {
				out <- models.ErrorEvent(err.Error())
				return
			}
			out <- models.NodeEvent(*refined)
			draft = refined

			if classified.Critic != nil {
				out <- models.StatusEvent("Critical review (gate)...")
				gate, err := e.deps.dispatchSingle(ctx, e.conversationID, draft.ID, classified.Critic.Model,
					dxoGatePrompt(draft.Content, classified.Critic.Instructions), models.NodeTypeCritique)
				if err != nil {
					out <- models.ErrorEvent(err.Error())
					return
				}
				out <- models.NodeEvent(*gate)
				confidence = parseConfidenceScore(gate.Content)
			} else {
				// No gatekeeper: synthetic progress per §4.4.3.
				confidence = 50 + 15*iteration
			}

			if confidence >= approvalThreshold {
				break
			}
		}

		status := "Review Limit Reached"
		if confidence >= approvalThreshold {
			status = "APPROVED"
		}
		verdictContent := fmt.Sprintf("Status: %s\nIterations: %d\nConfidence: %d", status, iterationsRun, confidence)

		draftID := draft.ID
		verdict, err := e.deps.Store.CreateNode(ctx, store.CreateNodeParams{
			ConversationID: e.conversationID,
			ParentID:       &draftID,
			Type:           models.NodeTypeVerdict,
			Content:        verdictContent,
			ModelName:      "System",
			ActualCost:     0,
		})
		if err != nil {
			out <- models.ErrorEvent(err.Error())
			return
		}
		out <- models.NodeEvent(*verdict)
		out <- models.DoneEvent()
	}()
	return out
}
