package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/capgate/capgate/internal/authz/http/dto"
	"github.com/capgate/capgate/internal/authz/usecase"
)

// RunListCapabilities prints the capabilities of the loaded snapshot.
func RunListCapabilities(registry usecase.CapabilityRegistry, out io.Writer, format string) error {
	capabilities := registry.List()

	if format == "json" {
		payload, err := json.MarshalIndent(dto.MapCapabilitiesToListResponse(capabilities), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal capabilities: %w", err)
		}
		fmt.Fprintln(out, string(payload))
		return nil
	}

	if len(capabilities) == 0 {
		fmt.Fprintln(out, "no capabilities registered")
		return nil
	}

	for _, capability := range capabilities {
		state := "enabled"
		if !capability.Enabled {
			state = "disabled"
		}

		if capability.Description != "" {
			fmt.Fprintf(out, "%s (%s): %s\n", capability.Name, state, capability.Description)
		} else {
			fmt.Fprintf(out, "%s (%s)\n", capability.Name, state)
		}
	}

	return nil
}
