package services

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SlugPlaceholder is used when a title has no characters a slug can keep.
const SlugPlaceholder = "untitled"

const markupExt = ".md"

// Latin letters that have no decomposition and would otherwise be dropped.
var letterFolds = strings.NewReplacer(
	"ß", "ss", "ẞ", "SS",
	"Ł", "L", "ł", "l",
	"Đ", "D", "đ", "d", "Ð", "D", "ð", "d",
	"Ø", "O", "ø", "o",
	"Æ", "AE", "æ", "ae",
	"Œ", "OE", "œ", "oe",
	"Þ", "TH", "þ", "th",
	"ı", "i",
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify derives a URL-safe slug from a title.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, letterFolds.Replace(title))
	if err != nil {
		folded = title
	}
	s := nonSlugChars.ReplaceAllString(strings.ToLower(folded), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return SlugPlaceholder
	}
	return s
}

// IsValidSlug reports whether s is lowercase ASCII words joined by single hyphens.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// slugFromName returns the slug for a markup file name, or false for other files.
func slugFromName(name string) (string, bool) {
	base := path.Base(name)
	if !strings.HasSuffix(base, markupExt) {
		return "", false
	}
	return strings.TrimSuffix(base, markupExt), true
}
