package projections

import (
	"context"

	domainPolicy "coachdesk/internal/domain/policy"
)

// GetPoliciesQuery carries query parameters.
type GetPoliciesQuery struct {
	ActiveOnly bool
}

// PolicyGroup is the policies of one category.
type PolicyGroup struct {
	Category string                `json:"category"`
	Policies []domainPolicy.Policy `json:"policies"`
}

// GetPoliciesResult carries the query result.
type GetPoliciesResult struct {
	Policies []domainPolicy.Policy `json:"policies"`
	Groups   []PolicyGroup         `json:"groups"`
}

// GetPoliciesDeps holds dependencies for GetPolicies.
type GetPoliciesDeps struct {
	PolicyStore PolicyStore
}

// QueryGetPolicies lists policies grouped by category in store order.
// POST: Groups preserve the order categories first appear in
func QueryGetPolicies(ctx context.Context, query GetPoliciesQuery, deps GetPoliciesDeps) (GetPoliciesResult, error) {
	policies, err := deps.PolicyStore.List(ctx, query.ActiveOnly)
	if err != nil {
		return GetPoliciesResult{}, err
	}
	result := GetPoliciesResult{Policies: policies, Groups: []PolicyGroup{}}
	pos := map[string]int{}
	for _, p := range policies {
		cat := p.Category
		if cat == "" {
			cat = "General"
		}
		i, ok := pos[cat]
		if !ok {
			i = len(result.Groups)
			pos[cat] = i
			result.Groups = append(result.Groups, PolicyGroup{Category: cat})
		}
		result.Groups[i].Policies = append(result.Groups[i].Policies, p)
	}
	return result, nil
}
