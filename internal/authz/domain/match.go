package domain

import "strings"

// MatchPattern checks if the candidate matches the dot-segmented pattern.
// Both strings are split on "." and compared segment by segment: a pattern segment
// matches if it is "*" or exactly equal (case-sensitive) to the candidate segment.
// Segment counts must be equal, so "*" never matches across dots.
//
// Examples:
//   - "filesystem.*" matches "filesystem.read" but NOT "network.http"
//   - "*" matches "filesystem" but NOT "filesystem.read" (segment-count mismatch)
//   - "*.read" matches "filesystem.read" and "network.read"
//
// Recursive wildcards (matching any depth under a prefix) are deliberately not
// supported: per-segment wildcards cannot silently overmatch.
func MatchPattern(pattern, candidate string) bool {
	patternParts := strings.Split(pattern, ".")
	candidateParts := strings.Split(candidate, ".")

	if len(patternParts) != len(candidateParts) {
		return false
	}

	for i := range patternParts {
		if patternParts[i] == "*" {
			// Wildcard matches any single segment
			continue
		}
		if patternParts[i] != candidateParts[i] {
			return false
		}
	}

	return true
}
