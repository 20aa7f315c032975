// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"github.com/capgate/capgate/internal/authz/domain"
)

// DecisionResponse represents an authorization decision in API responses.
// Rule is only present when a concrete rule produced the decision.
type DecisionResponse struct {
	Outcome    string        `json:"outcome"`
	Allowed    bool          `json:"allowed"`
	Reason     string        `json:"reason"`
	PolicyName string        `json:"policy_name,omitempty"`
	Rule       *RuleResponse `json:"rule,omitempty"`
}

// RuleResponse represents a policy rule in API responses.
type RuleResponse struct {
	Effect     string              `json:"effect"`
	Principal  string              `json:"principal"`
	Resource   string              `json:"resource"`
	Action     string              `json:"action"`
	Conditions []ConditionResponse `json:"conditions,omitempty"`
}

// ConditionResponse represents a rule condition in API responses.
type ConditionResponse struct {
	Key      string `json:"key"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

// CapabilityResponse represents a registered capability in API responses.
type CapabilityResponse struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Enabled     bool                      `json:"enabled"`
	Parameters  []CapabilityParamResponse `json:"parameters,omitempty"`
}

// CapabilityParamResponse represents a declared capability parameter.
type CapabilityParamResponse struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// PolicyResponse represents a policy and its rules in API responses.
type PolicyResponse struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Rules   []RuleResponse `json:"rules"`
}

// ListCapabilitiesResponse represents the capability listing in API responses.
type ListCapabilitiesResponse struct {
	Data []CapabilityResponse `json:"data"`
}

// ListPoliciesResponse represents the policy listing in API responses.
type ListPoliciesResponse struct {
	Data []PolicyResponse `json:"data"`
}

// MapDecisionToResponse converts a domain decision to an API response.
func MapDecisionToResponse(decision domain.Decision) DecisionResponse {
	response := DecisionResponse{
		Outcome:    string(decision.Outcome),
		Allowed:    decision.Allowed(),
		Reason:     decision.Reason,
		PolicyName: decision.PolicyName,
	}
	if decision.Rule != nil {
		rule := mapRuleToResponse(*decision.Rule)
		response.Rule = &rule
	}

	return response
}

// MapCapabilitiesToListResponse converts domain capabilities to a list response.
func MapCapabilitiesToListResponse(capabilities []domain.Capability) ListCapabilitiesResponse {
	data := make([]CapabilityResponse, 0, len(capabilities))
	for _, capability := range capabilities {
		params := make([]CapabilityParamResponse, 0, len(capability.Parameters))
		for _, param := range capability.Parameters {
			params = append(params, CapabilityParamResponse{
				Name:     param.Name,
				Type:     param.Type,
				Required: param.Required,
			})
		}

		data = append(data, CapabilityResponse{
			Name:        capability.Name,
			Description: capability.Description,
			Enabled:     capability.Enabled,
			Parameters:  params,
		})
	}

	return ListCapabilitiesResponse{Data: data}
}

// MapPoliciesToListResponse converts domain policies to a list response.
func MapPoliciesToListResponse(policies []domain.Policy) ListPoliciesResponse {
	data := make([]PolicyResponse, 0, len(policies))
	for _, policy := range policies {
		rules := make([]RuleResponse, 0, len(policy.Rules))
		for _, rule := range policy.Rules {
			rules = append(rules, mapRuleToResponse(rule))
		}

		data = append(data, PolicyResponse{
			Name:    policy.Name,
			Version: policy.Version,
			Rules:   rules,
		})
	}

	return ListPoliciesResponse{Data: data}
}

func mapRuleToResponse(rule domain.Rule) RuleResponse {
	conditions := make([]ConditionResponse, 0, len(rule.Conditions))
	for _, condition := range rule.Conditions {
		conditions = append(conditions, ConditionResponse{
			Key:      condition.Key,
			Operator: string(condition.Operator),
			Value:    condition.Value,
		})
	}

	return RuleResponse{
		Effect:     string(rule.Effect),
		Principal:  rule.Principal,
		Resource:   rule.Resource,
		Action:     rule.Action,
		Conditions: conditions,
	}
}
