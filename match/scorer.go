package match

import (
	"strings"

	"github.com/goliatone/go-fleetbridge/core"
)

// Score evaluates an identifier against a candidate set and returns the best
// result found. Candidates are walked in order; the first comparison reaching
// a given tier wins that tier, and iteration stops as soon as an exact match
// is found. An identifier that is empty after folding and sanitizing scores
// zero against everything.
func Score(identifier string, candidates []string) core.MatchResult {
	folded := Fold(identifier)
	sanitized := Sanitize(identifier)
	if folded == "" && sanitized == "" {
		return core.MatchResult{Score: core.ScoreNone, Reason: core.MatchReasonNone}
	}

	best := core.MatchResult{Score: core.ScoreNone, Reason: core.MatchReasonNone}
	for _, candidate := range candidates {
		result := scoreCandidate(folded, sanitized, candidate)
		if result.Score > best.Score {
			best = result
		}
		if best.Score == core.ScoreExact {
			break
		}
	}
	return best
}

// ScoreVehicle scores an identifier against everything a vehicle record
// exposes.
func ScoreVehicle(identifier string, vehicle core.VehicleRecord) core.MatchResult {
	return Score(identifier, Candidates(vehicle))
}

func scoreCandidate(folded, sanitized, candidate string) core.MatchResult {
	candidateFolded := Fold(candidate)
	candidateSanitized := Sanitize(candidate)
	if candidateFolded == "" && candidateSanitized == "" {
		return core.MatchResult{Score: core.ScoreNone, Reason: core.MatchReasonNone}
	}

	if equalNonEmpty(folded, candidateFolded) || equalNonEmpty(sanitized, candidateSanitized) {
		return core.MatchResult{Score: core.ScoreExact, Reason: core.MatchReasonExact}
	}
	if edgeMatch(folded, candidateFolded) || edgeMatch(sanitized, candidateSanitized) {
		return core.MatchResult{Score: core.ScorePrefixSuffix, Reason: core.MatchReasonPrefixSuffix}
	}
	if containsMatch(folded, candidateFolded) || containsMatch(sanitized, candidateSanitized) {
		return core.MatchResult{Score: core.ScoreContains, Reason: core.MatchReasonContains}
	}
	return core.MatchResult{Score: core.ScoreNone, Reason: core.MatchReasonNone}
}

func equalNonEmpty(a, b string) bool {
	return a != "" && a == b
}

func edgeMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasSuffix(a, b) ||
		strings.HasPrefix(b, a) || strings.HasSuffix(b, a)
}

func containsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
