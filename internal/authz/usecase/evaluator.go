package usecase

import (
	"fmt"

	"github.com/capgate/capgate/internal/authz/domain"
)

// Evaluator combines rule matches across all active policies into a single
// decision using deny-overrides with deny-by-default.
//
// Deny-overrides is the only combining rule that preserves the deny-by-default
// guarantee under arbitrary rule ordering and arbitrary policy composition: an
// administrator can always add a narrowing deny rule without worrying about rule
// order elsewhere. Rule order therefore never affects the outcome, only which
// rule is cited in the reason (first match in policy-then-rule order).
type Evaluator struct{}

// NewEvaluator creates a policy evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate produces a decision for the request tuple against the union of rules
// in the given policies. Evaluation is pure and deterministic: the same inputs
// always yield an identical decision.
func (e *Evaluator) Evaluate(
	policies []domain.Policy,
	principal, resource, action string,
	reqCtx domain.Context,
) domain.Decision {
	var allowRule *domain.Rule
	var allowPolicy string

	for _, policy := range policies {
		for _, rule := range policy.Rules {
			if !rule.Matches(principal, resource, action, reqCtx) {
				continue
			}

			if rule.Effect == domain.EffectDeny {
				// First matching deny rule in policy-then-rule order wins
				// immediately: no later rule can override it.
				matched := rule
				return domain.Decision{
					Outcome:    domain.EffectDeny,
					Rule:       &matched,
					PolicyName: policy.Name,
					Reason:     fmt.Sprintf("denied by rule for resource %q in policy %q", rule.Resource, policy.Name),
				}
			}

			// Remember the first matching allow rule but keep scanning: a deny
			// rule anywhere in the candidate set overrides it.
			if allowRule == nil {
				matched := rule
				allowRule = &matched
				allowPolicy = policy.Name
			}
		}
	}

	if allowRule != nil {
		return domain.Decision{
			Outcome:    domain.EffectAllow,
			Rule:       allowRule,
			PolicyName: allowPolicy,
			Reason:     fmt.Sprintf("allowed by rule for resource %q in policy %q", allowRule.Resource, allowPolicy),
		}
	}

	return domain.Decision{
		Outcome: domain.EffectDeny,
		Reason:  domain.ReasonDefaultDeny,
	}
}
