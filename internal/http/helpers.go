package http

import "strings"

// sanitizeInput removes control characters. Tabs, newlines and surrounding
// spaces are kept; text fields are stored as typed.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
}
