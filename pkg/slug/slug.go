package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given title.
//
// Examples:
//   - "The Go Programming Language" → "the-go-programming-language"
//   - "Clean Code: A Handbook"      → "clean-code-a-handbook"
func Generate(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))

	// Strip common accented characters to ASCII equivalents.
	replacer := strings.NewReplacer(
		"á", "a", "à", "a", "ä", "a", "â", "a",
		"é", "e", "è", "e", "ë", "e", "ê", "e",
		"í", "i", "ì", "i", "ï", "i", "î", "i",
		"ó", "o", "ò", "o", "ö", "o", "ô", "o",
		"ú", "u", "ù", "u", "ü", "u", "û", "u",
		"ñ", "n", "ç", "c",
	)
	s = replacer.Replace(s)

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
