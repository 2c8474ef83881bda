package sanitizer

// IsElevenDigits reports whether the string is exactly 11 ASCII digits.
// Formatting characters make the input invalid; callers must not strip
// them first.
func IsElevenDigits(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
