package engine

import (
	"fmt"
	"strings"
)

// labeledFeedback is one expert's review, tagged with its role name for
// the DxO refinement prompt (§4.4.3 Phase C).
type labeledFeedback struct {
	RoleName string
	Content  string
}

// ensembleResearchPrompt is the Ensemble Phase 1 research prompt (§4.4.1).
func ensembleResearchPrompt(rootContent string) string {
	return fmt.Sprintf(
		"You are a Model in an ensemble. The user has asked: '%s'. Please answer with your own independent analysis.",
		rootContent)
}

// ensembleSynthesisPrompt is the Ensemble Phase 2 chairman prompt,
// anonymizing contributors by positional index to avoid bias (§4.4.1).
func ensembleSynthesisPrompt(rootContent string, researchContents []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user asked: '%s'\n\n", rootContent)
	b.WriteString("Below are independent responses from the ensemble, anonymized by position:\n\n")
	for i, c := range researchContents {
		fmt.Fprintf(&b, "Agent %d:\n%s\n\n", i+1, c)
	}
	b.WriteString("Synthesize these into a single best answer. When crediting a contributor, cite them only by pseudonym (e.g. \"Agent 2\"), never by model name.")
	return b.String()
}

// dagPlanPrompt is the DAG coordinator prompt (§4.4.2 Phase 1).
func dagPlanPrompt(rootContent string) string {
	return fmt.Sprintf(
		"You are the chairman coordinating a council. The user has asked: '%s'. Produce a plan breaking this request into the lines of investigation the council should pursue.",
		rootContent)
}

// dagResearchPrompt is the DAG researcher prompt (§4.4.2 Phase 2).
func dagResearchPrompt(planContent string) string {
	return fmt.Sprintf(
		"You are a researcher on a council. The coordinator's plan is:\n\n%s\n\nConduct research addressing this plan and report your findings.",
		planContent)
}

// dagCritiqueBundlePrompt is the DAG critic prompt, anonymizing
// researchers by positional index (§4.4.2 Phase 3).
func dagCritiqueBundlePrompt(planContent string, researchContents []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The coordinator's plan was:\n\n%s\n\n", planContent)
	b.WriteString("The following findings were gathered by researchers, anonymized by position:\n\n")
	for i, c := range researchContents {
		fmt.Fprintf(&b, "Findings from Agent %d:\n%s\n\n", i+1, c)
	}
	b.WriteString("Critique these findings: identify gaps, errors, and unanswered questions relative to the plan.")
	return b.String()
}

// dagSynthesisPrompt is the DAG chairman synthesis prompt (§4.4.2 Phase 4).
func dagSynthesisPrompt(planContent string, researchContents, critiqueContents []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The coordinator's plan was:\n\n%s\n\n", planContent)
	for i, c := range researchContents {
		fmt.Fprintf(&b, "Findings from Agent %d:\n%s\n\n", i+1, c)
	}
	for i, c := range critiqueContents {
		fmt.Fprintf(&b, "Critique from Agent %d:\n%s\n\n", i+1, c)
	}
	b.WriteString("Synthesize a final answer, attributing contributions only by pseudonym (e.g. \"Agent 2\"), never by model name.")
	return b.String()
}

// dxoProposalPrompt is the DxO Phase A proposer prompt (§4.4.3).
func dxoProposalPrompt(rootContent, instructions string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user has requested:\n\n%s\n\n", rootContent)
	if instructions != "" {
		fmt.Fprintf(&b, "%s\n\n", instructions)
	}
	b.WriteString("Draft an initial proposal.")
	return b.String()
}

// dxoReviewPrompt is the DxO Phase B expert-review prompt (§4.4.3).
func dxoReviewPrompt(draftContent, instructions string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the following draft:\n\n%s\n\n", draftContent)
	if instructions != "" {
		fmt.Fprintf(&b, "%s\n\n", instructions)
	}
	b.WriteString("Provide your critique.")
	return b.String()
}

// dxoRefinementPrompt is the DxO Phase C refinement prompt, with every
// expert's feedback labeled by role name (§4.4.3).
func dxoRefinementPrompt(draftContent string, feedback []labeledFeedback) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your current draft:\n\n%s\n\n", draftContent)
	for _, f := range feedback {
		fmt.Fprintf(&b, "Feedback from %s:\n%s\n\n", f.RoleName, f.Content)
	}
	b.WriteString("Revise your draft to address this feedback.")
	return b.String()
}

// dxoGatePrompt is the DxO Phase D gatekeeper prompt. It asks for a
// trailing "Score: <n>" line, the legacy format parseConfidenceScore
// falls back to when no structured score block is present (§4.4.3, §9
// "Score parsing robustness").
func dxoGatePrompt(draftContent, instructions string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Critically review this refined draft for approval:\n\n%s\n\n", draftContent)
	if instructions != "" {
		fmt.Fprintf(&b, "%s\n\n", instructions)
	}
	b.WriteString(`Respond with your critique, then a line reading "Score: <0-100>" reflecting your confidence that this draft is ready to ship.`)
	return b.String()
}

// SuperChatPrompt prepends the prior turn's synthesis as context ahead
// of the new request, per §6's SuperChat continuation rule. Exported
// for the Coordinator to use when composing a continuation turn's root
// content before handing it to the Ensemble engine.
func SuperChatPrompt(priorSynthesis, newPrompt string) string {
	return fmt.Sprintf("Context from previous turn:\n%s\n\nNew Request: %s", priorSynthesis, newPrompt)
}
