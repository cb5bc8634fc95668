// utils/tags.go
package utils

import (
	"encoding/json"
	"strings"
)

// MaxTags is the client-advertised tag limit per content item.
const MaxTags = 5

// ParseTags normalizes a submitted tag list. Clients send tags either as a
// JSON-encoded array or as a comma-separated string; the result is a
// deduplicated, lowercased set capped at MaxTags, preserving first-seen
// order for display.
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			// Not valid JSON after all, fall back to comma splitting.
			parts = strings.Split(raw, ",")
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	seen := make(map[string]bool)
	var tags []string
	for _, part := range parts {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

// ParseBoolDefault coerces a form value into a boolean, accepting the
// literal strings "true"/"false". Anything else yields the default.
func ParseBoolDefault(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true
	case "false":
		return false
	}
	return def
}
