// Package file loads capability and policy documents from JSON or YAML files
// into the in-memory data model. Loading validates every document before
// activation: a structurally malformed rule blocks the whole file, since an
// invalid rule silently ignored would be a security regression.
package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	validation "github.com/jellydator/validation"

	"github.com/capgate/capgate/internal/authz/domain"
	"github.com/capgate/capgate/internal/authz/repository/memory"
	apperrors "github.com/capgate/capgate/internal/errors"
	customValidation "github.com/capgate/capgate/internal/validation"
)

// capabilityDocument is the on-disk shape of a capability declaration file.
type capabilityDocument struct {
	Capabilities []capabilityEntry `json:"capabilities" yaml:"capabilities"`
}

type capabilityEntry struct {
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Enabled     *bool            `json:"enabled" yaml:"enabled"` // nil means enabled
	Parameters  []parameterEntry `json:"parameters" yaml:"parameters"`
}

type parameterEntry struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
}

// policyDocument is the on-disk shape of a policy set file.
type policyDocument struct {
	Policies []policyEntry `json:"policies" yaml:"policies"`
}

type policyEntry struct {
	Name    string      `json:"name" yaml:"name"`
	Version string      `json:"version" yaml:"version"`
	Rules   []ruleEntry `json:"rules" yaml:"rules"`
}

type ruleEntry struct {
	Effect     string           `json:"effect" yaml:"effect"`
	Principal  string           `json:"principal" yaml:"principal"`
	Resource   string           `json:"resource" yaml:"resource"`
	Action     string           `json:"action" yaml:"action"`
	Conditions []conditionEntry `json:"conditions" yaml:"conditions"`
}

type conditionEntry struct {
	Key      string `json:"key" yaml:"key"`
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value" yaml:"value"`
}

// LoadRegistry reads a capability declaration file and builds a registry from it.
// Duplicate names and malformed entries fail the whole load.
func LoadRegistry(path string) (*memory.Registry, error) {
	var doc capabilityDocument
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}

	registry := memory.NewRegistry()
	for i, entry := range doc.Capabilities {
		if err := entry.validate(); err != nil {
			return nil, apperrors.Wrapf(err, "capability %d (%q)", i, entry.Name)
		}

		capability := domain.NewCapability(entry.Name, entry.Description)
		if entry.Enabled != nil && !*entry.Enabled {
			capability = capability.Disabled()
		}
		for _, param := range entry.Parameters {
			capability.Parameters = append(capability.Parameters, domain.CapabilityParam{
				Name:     param.Name,
				Type:     param.Type,
				Required: param.Required,
			})
		}

		if err := registry.Register(capability); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// LoadPolicies reads a policy set file and maps it to domain policies. Every
// policy, rule, and condition is validated; the first structural error aborts
// the load and reports the offending location.
func LoadPolicies(path string) ([]domain.Policy, error) {
	var doc policyDocument
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}

	policies := make([]domain.Policy, 0, len(doc.Policies))
	for i, entry := range doc.Policies {
		policy, err := entry.toDomain()
		if err != nil {
			return nil, apperrors.Wrapf(err, "policy %d (%q)", i, entry.Name)
		}
		policies = append(policies, policy)
	}

	return policies, nil
}

// LoadSnapshot loads a capability file and a policy file into one coherent
// snapshot, ready for atomic publication.
func LoadSnapshot(capabilitiesPath, policiesPath string) (*memory.Snapshot, error) {
	registry, err := LoadRegistry(capabilitiesPath)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load capabilities")
	}

	policies, err := LoadPolicies(policiesPath)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load policies")
	}

	return &memory.Snapshot{Registry: registry, Policies: policies}, nil
}

// decodeFile reads and unmarshals a JSON or YAML file based on its extension.
func decodeFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.Wrapf(err, "failed to read %q", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, target); err != nil {
			return apperrors.Wrapf(domain.ErrInvalidPolicy, "failed to parse %q: %s", path, err)
		}
	default:
		if err := json.Unmarshal(data, target); err != nil {
			return apperrors.Wrapf(domain.ErrInvalidPolicy, "failed to parse %q: %s", path, err)
		}
	}

	return nil
}

// validate checks the structural requirements of a capability entry.
func (e capabilityEntry) validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Name,
			validation.Required,
			customValidation.CapabilityName,
		),
		validation.Field(&e.Parameters,
			validation.Each(validation.By(validateParameter)),
		),
	)
	if err != nil {
		return apperrors.Wrap(domain.ErrInvalidPolicy, err.Error())
	}
	return nil
}

func validateParameter(value any) error {
	param, ok := value.(parameterEntry)
	if !ok {
		return validation.NewError("validation_parameter_type", "must be a parameter spec")
	}
	return validation.ValidateStruct(&param,
		validation.Field(&param.Name, validation.Required, customValidation.NotBlank),
	)
}

// toDomain validates a policy entry and maps it to the domain model.
func (e policyEntry) toDomain() (domain.Policy, error) {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required, customValidation.NotBlank),
		validation.Field(&e.Version, validation.Required, customValidation.NotBlank),
	)
	if err != nil {
		return domain.Policy{}, apperrors.Wrap(domain.ErrInvalidPolicy, err.Error())
	}

	policy := domain.NewPolicy(e.Name, e.Version)
	for i, rule := range e.Rules {
		domainRule, err := rule.toDomain()
		if err != nil {
			return domain.Policy{}, apperrors.Wrapf(err, "rule %d", i)
		}
		policy = policy.WithRule(domainRule)
	}

	return policy, nil
}

func (e ruleEntry) toDomain() (domain.Rule, error) {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Effect,
			validation.Required,
			validation.In(string(domain.EffectAllow), string(domain.EffectDeny)),
		),
		validation.Field(&e.Principal, validation.Required, customValidation.Pattern),
		validation.Field(&e.Resource, validation.Required, customValidation.Pattern),
		validation.Field(&e.Action, validation.Required, customValidation.Pattern),
	)
	if err != nil {
		return domain.Rule{}, apperrors.Wrap(domain.ErrInvalidPolicy, err.Error())
	}

	rule := domain.Rule{
		Effect:    domain.Effect(e.Effect),
		Principal: e.Principal,
		Resource:  e.Resource,
		Action:    e.Action,
	}
	for i, condition := range e.Conditions {
		domainCondition, err := condition.toDomain()
		if err != nil {
			return domain.Rule{}, apperrors.Wrapf(err, "condition %d", i)
		}
		rule.Conditions = append(rule.Conditions, domainCondition)
	}

	return rule, nil
}

func (e conditionEntry) toDomain() (domain.Condition, error) {
	operator := domain.Operator(e.Operator)

	err := validation.ValidateStruct(&e,
		validation.Field(&e.Key, validation.Required, customValidation.NotBlank),
		validation.Field(&e.Operator, validation.Required),
	)
	if err == nil && !operator.Valid() {
		err = validation.NewError("validation_operator", "unknown condition operator")
	}
	if err == nil {
		err = validateConditionValue(operator, e.Value)
	}
	if err != nil {
		return domain.Condition{}, apperrors.Wrap(domain.ErrInvalidPolicy, err.Error())
	}

	return domain.Condition{
		Key:      e.Key,
		Operator: operator,
		Value:    e.Value,
	}, nil
}

// validateConditionValue enforces the operator-dependent comparison value shape
// at load time, so malformed conditions fail activation instead of silently
// evaluating to false on every request.
func validateConditionValue(operator domain.Operator, value any) error {
	switch operator {
	case domain.OperatorExists:
		// Value is ignored
		return nil

	case domain.OperatorIn:
		switch value.(type) {
		case []any, []string:
			return nil
		}
		return validation.NewError("validation_condition_value", "operator `in` requires a set value")

	case domain.OperatorMatches:
		pattern, ok := value.(string)
		if !ok {
			return validation.NewError("validation_condition_value", "operator `matches` requires a string pattern")
		}
		return customValidation.Pattern.Validate(pattern)

	default:
		if value == nil {
			return validation.NewError("validation_condition_value", "comparison value is required")
		}
		return nil
	}
}
