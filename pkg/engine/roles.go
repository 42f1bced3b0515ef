package engine

import (
	"fmt"
	"strings"

	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/models"
)

// ExpertRole is one DxO expert, tagged with whether its review counts
// as QA (producing a test_cases node instead of critique, §4.4.3).
type ExpertRole struct {
	Role models.Role
	IsQA bool
}

// ClassifiedRoles is the result of sorting a DxO request's role list
// into its protocol positions (§4.4.3 "Role identification rules").
type ClassifiedRoles struct {
	Proposer models.Role
	Critic   *models.Role
	Experts  []ExpertRole
}

// ClassifyRoles sorts roles into Proposer / Critic / Experts. An
// explicit Role.Kind takes precedence over name-substring matching per
// role (§9 open question "Role selection by name substring", resolved);
// roles without a Kind fall back to the legacy substring rules.
func ClassifyRoles(roles []models.Role) (ClassifiedRoles, error) {
	if len(roles) == 0 {
		return ClassifiedRoles{}, fmt.Errorf("%w: DxO requires at least one role", apierrors.ErrValidation)
	}

	proposerIdx := indexOfKind(roles, models.RoleKindProposer)
	if proposerIdx == -1 {
		proposerIdx = indexWhere(roles, func(r models.Role) bool {
			return r.Kind == "" && containsAny(r.Name, "Lead", "Architect", "Researcher")
		})
	}
	if proposerIdx == -1 {
		proposerIdx = 0
	}

	criticIdx := indexOfKind(roles, models.RoleKindCritic)
	if criticIdx == -1 {
		criticIdx = indexWhere(roles, func(r models.Role) bool {
			return r.Kind == "" && containsAny(r.Name, "Critical Reviewer")
		})
	}
	if criticIdx == proposerIdx {
		criticIdx = -1
	}

	var critic *models.Role
	if criticIdx != -1 {
		c := roles[criticIdx]
		critic = &c
	}

	var experts []ExpertRole
	for i, r := range roles {
		if i == proposerIdx || i == criticIdx {
			continue
		}
		isQA := r.Kind == models.RoleKindQA || (r.Kind == "" && containsAny(r.Name, "QA", "Quality"))
		experts = append(experts, ExpertRole{Role: r, IsQA: isQA})
	}

	return ClassifiedRoles{Proposer: roles[proposerIdx], Critic: critic, Experts: experts}, nil
}

func indexOfKind(roles []models.Role, kind models.RoleKind) int {
	for i, r := range roles {
		if r.Kind == kind {
			return i
		}
	}
	return -1
}

func indexWhere(roles []models.Role, pred func(models.Role) bool) int {
	for i, r := range roles {
		if pred(r) {
			return i
		}
	}
	return -1
}

func containsAny(name string, subs ...string) bool {
	lower := strings.ToLower(name)
	for _, s := range subs {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
