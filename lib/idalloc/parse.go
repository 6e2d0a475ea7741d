package idalloc

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatIdentifier renders "<prefix>-<n>".
func FormatIdentifier(prefix string, n uint64) string {
	return prefix + "-" + strconv.FormatUint(n, 10)
}

// ParseIdentifier splits an identifier at its last hyphen. The suffix must be
// a positive decimal integer made of digits only. ok is false for anything
// else.
func ParseIdentifier(id string) (prefix string, n uint64, ok bool) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return "", 0, false
	}
	suffix := id[i+1:]
	if suffix == "" {
		return "", 0, false
	}
	for j := 0; j < len(suffix); j++ {
		if suffix[j] < '0' || suffix[j] > '9' {
			return "", 0, false
		}
	}
	n, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil || n == 0 {
		return "", 0, false
	}
	return id[:i], n, true
}

// InitialsFromName derives a two-letter prefix from a display name:
// "Jane Doe" -> "JD", "Acme" -> "AC", "" -> "XX".
func InitialsFromName(name string) string {
	words := strings.Fields(name)
	switch len(words) {
	case 0:
		return "XX"
	case 1:
		return strings.ToUpper(firstRunes(words[0], 2))
	default:
		return strings.ToUpper(firstRunes(words[0], 1) + firstRunes(words[len(words)-1], 1))
	}
}

func firstRunes(s string, n int) string {
	end := 0
	for i := 0; i < n && end < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end]
}

// validPrefix reports whether prefix can be used in identifiers.
func validPrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	for _, r := range prefix {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
