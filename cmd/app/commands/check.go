package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/capgate/capgate/internal/authz/http/dto"
	"github.com/capgate/capgate/internal/authz/usecase"
)

// RunCheck performs a one-shot authorization decision against the loaded
// snapshot and prints the result. The process exit status follows the decision:
// a deny returns an error so shell scripts can branch on it directly.
func RunCheck(
	ctx context.Context,
	gate usecase.CapabilityGate,
	out io.Writer,
	capability, principal, action, contextJSON, format string,
) error {
	reqCtx, err := parseRequestContext(contextJSON)
	if err != nil {
		return err
	}

	decision := gate.Authorize(ctx, capability, principal, action, reqCtx)

	if format == "json" {
		payload, err := json.MarshalIndent(dto.MapDecisionToResponse(decision), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal decision: %w", err)
		}
		fmt.Fprintln(out, string(payload))
	} else {
		fmt.Fprintf(out, "%s: %s\n", decision.Outcome, decision.Reason)
	}

	if !decision.Allowed() {
		return fmt.Errorf("denied: %s", decision.Reason)
	}

	return nil
}
