// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/capgate/capgate/internal/authz/domain"
	customValidation "github.com/capgate/capgate/internal/validation"
)

// AuthorizeRequest contains the parameters of an authorization check.
// Context carries request attributes for condition evaluation and may be empty.
type AuthorizeRequest struct {
	Capability string         `json:"capability"`
	Principal  string         `json:"principal"`
	Action     string         `json:"action"`
	Context    map[string]any `json:"context"`
}

// Validate checks if the authorize request is valid.
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Capability,
			validation.Required,
			customValidation.CapabilityName,
		),
		validation.Field(&r.Principal,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Action,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// RequestContext converts the raw context map to the domain representation.
func (r *AuthorizeRequest) RequestContext() domain.Context {
	if r.Context == nil {
		return domain.Context{}
	}
	return domain.Context(r.Context)
}
