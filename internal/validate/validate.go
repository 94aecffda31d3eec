package validate

import (
	"regexp"
	"strings"
)

var (
	reASIN  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,20}$`)
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reType  = regexp.MustCompile(`^[a-z0-9_]{1,50}$`)
	reSort  = regexp.MustCompile(`^(asc|desc)$`)
)

// ASIN validates a product identifier (owner or sibling reference).
func ASIN(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reASIN.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// VariantType validates a variant type tag such as color_name or size_name.
func VariantType(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reType.MatchString(s)
}

// URL checks the scheme only; anything more is the upstream feed's problem.
func URL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 500 {
		return "", false
	}
	return s, strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

func SortOrder(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "asc", true
	}
	return s, reSort.MatchString(s)
}

// Password enforces a length window plus one of each character class.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
