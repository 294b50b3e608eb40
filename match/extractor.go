package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-fleetbridge/core"
)

// attributeKeywords select entries from a vehicle's open attribute map whose
// key plausibly carries a fleet identifier.
var attributeKeywords = []string{"unit", "fleet", "number", "bus", "coach"}

// Candidates derives every plausible identifier string from a vehicle record:
// the fixed identifier-bearing fields plus keyword-matched attributes, each in
// raw, folded, and sanitized form, deduplicated preserving first-seen order.
func Candidates(vehicle core.VehicleRecord) []string {
	values := []string{
		vehicle.Name,
		vehicle.ExternalID,
		vehicle.Label,
		vehicle.LicensePlate,
		vehicle.UnitNumber,
	}
	// Attribute entries are appended in sorted key order so candidate
	// iteration order, and therefore tie resolution, stays deterministic.
	keys := make([]string, 0, len(vehicle.Attributes))
	for key := range vehicle.Attributes {
		if keywordKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value := stringValue(vehicle.Attributes[key]); value != "" {
			values = append(values, value)
		}
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(values)*3)
	add := func(value string) {
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		add(value)
		add(Fold(value))
		add(Sanitize(value))
	}
	return out
}

func keywordKey(key string) bool {
	folded := Fold(key)
	if folded == "" {
		return false
	}
	for _, keyword := range attributeKeywords {
		if strings.Contains(folded, keyword) {
			return true
		}
	}
	return false
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	case nil:
		return ""
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
