// Package validation holds pure helpers for normalizing and checking
// user-supplied input before it reaches services or storage.
package validation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mindvault-app/mindvault/internal/domain"
)

// IsKnownType reports whether v names a recognized knowledge item type.
func IsKnownType(v string) bool {
	return domain.IsValidItemType(domain.ItemType(v))
}

// IsKnownSortField reports whether v names a recognized list sort column.
func IsKnownSortField(v string) bool {
	return domain.IsValidSortField(domain.SortField(v))
}

// IsKnownSortOrder reports whether v is "asc" or "desc".
func IsKnownSortOrder(v string) bool {
	return domain.IsValidSortOrder(domain.SortOrder(v))
}

// ParseBoundedInt parses an optional numeric string, returning fallback when
// raw is empty or unparsable, and clamping the result to [min, max].
// It never fails.
func ParseBoundedInt(raw string, fallback, min, max int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if parsed < min {
		return min
	}
	if parsed > max {
		return max
	}
	return parsed
}

// IsSafeURL accepts only absolute http(s) URLs; every other scheme
// (javascript:, data:, relative paths) is rejected.
func IsSafeURL(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

// NormalizeTags trims, lower-cases, drops empties and duplicates (keeping
// first-seen order), and caps the result at domain.MaxTags entries.
func NormalizeTags(raw []string) []string {
	normalized := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
		if len(normalized) == domain.MaxTags {
			break
		}
	}
	return normalized
}
