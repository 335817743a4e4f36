package common

import "strings"

// EqualFoldAny returns true if s equals any of opts, ignoring case and surrounding spaces.
func EqualFoldAny(s string, opts ...string) bool {
	s = strings.TrimSpace(s)
	for _, opt := range opts {
		if strings.EqualFold(s, opt) {
			return true
		}
	}
	return false
}

// FirstNonEmpty returns the first value that is not blank, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
