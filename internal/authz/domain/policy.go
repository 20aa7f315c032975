package domain

// Effect is the outcome a rule asserts when it matches a request.
type Effect string

const (
	// EffectAllow permits the requested operation.
	EffectAllow Effect = "allow"

	// EffectDeny refuses the requested operation. Any matching deny rule wins over
	// any matching allow rule regardless of order (deny-overrides).
	EffectDeny Effect = "deny"
)

// Valid reports whether the effect is one of the supported effects.
func (e Effect) Valid() bool {
	return e == EffectAllow || e == EffectDeny
}

// Rule is one authorization clause. Principal, resource, and action are
// dot-segmented wildcard patterns (see MatchPattern); conditions are conjunctive.
type Rule struct {
	Effect     Effect
	Principal  string
	Resource   string
	Action     string
	Conditions []Condition
}

// AllowRule creates an allow rule for the given resource pattern that applies to
// any principal and the "execute" action.
func AllowRule(resource string) Rule {
	return Rule{
		Effect:    EffectAllow,
		Principal: "*",
		Resource:  resource,
		Action:    "execute",
	}
}

// DenyRule creates a deny rule for the given resource pattern that applies to
// any principal and the "execute" action.
func DenyRule(resource string) Rule {
	return Rule{
		Effect:    EffectDeny,
		Principal: "*",
		Resource:  resource,
		Action:    "execute",
	}
}

// WithConditions returns a copy of the rule with the given conditions attached.
func (r Rule) WithConditions(conditions ...Condition) Rule {
	r.Conditions = conditions
	return r
}

// Matches checks whether the rule applies to the concrete request. The principal,
// resource, and action patterns must all match and every condition must be
// satisfied by the request context. A rule with no conditions is vacuously
// satisfied by any context.
func (r Rule) Matches(principal, resource, action string, reqCtx Context) bool {
	if !MatchPattern(r.Principal, principal) {
		return false
	}
	if !MatchPattern(r.Resource, resource) {
		return false
	}
	if !MatchPattern(r.Action, action) {
		return false
	}

	for _, condition := range r.Conditions {
		if !condition.Satisfied(reqCtx) {
			return false
		}
	}

	return true
}

// Policy is a named, versioned, ordered sequence of rules. Multiple policies may be
// active simultaneously; evaluation considers the union of their rules. A policy
// with zero rules contributes nothing to any decision.
type Policy struct {
	Name    string
	Version string
	Rules   []Rule
}

// NewPolicy creates an empty policy with the given name and version.
func NewPolicy(name, version string) Policy {
	return Policy{Name: name, Version: version}
}

// WithRule returns a copy of the policy with the rule appended.
func (p Policy) WithRule(rule Rule) Policy {
	rules := make([]Rule, 0, len(p.Rules)+1)
	rules = append(rules, p.Rules...)
	rules = append(rules, rule)
	p.Rules = rules
	return p
}
