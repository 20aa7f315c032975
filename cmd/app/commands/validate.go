package commands

import (
	"fmt"
	"io"

	"github.com/capgate/capgate/internal/authz/repository/file"
)

// RunValidate checks that the capability and policy files parse and pass
// structural validation, without starting a server. At least one file must be
// given. Returns an error when any document is invalid, so the command can be
// used as a CI gate for policy changes.
func RunValidate(capabilityFile, policyFile string, out io.Writer) error {
	if capabilityFile == "" && policyFile == "" {
		return fmt.Errorf("nothing to validate: provide a capability file, a policy file, or both")
	}

	if capabilityFile != "" {
		registry, err := file.LoadRegistry(capabilityFile)
		if err != nil {
			return fmt.Errorf("capability file %s: %w", capabilityFile, err)
		}
		fmt.Fprintf(out, "%s: OK (%d capabilities)\n", capabilityFile, len(registry.List()))
	}

	if policyFile != "" {
		policies, err := file.LoadPolicies(policyFile)
		if err != nil {
			return fmt.Errorf("policy file %s: %w", policyFile, err)
		}

		ruleCount := 0
		for _, policy := range policies {
			ruleCount += len(policy.Rules)
		}
		fmt.Fprintf(out, "%s: OK (%d policies, %d rules)\n", policyFile, len(policies), ruleCount)
	}

	return nil
}
