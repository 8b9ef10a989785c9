package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps a free-text field at
// maxLen bytes. Contact blocks on quote submissions run through this before
// reaching the service layer; maxLen <= 0 means no cap.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
