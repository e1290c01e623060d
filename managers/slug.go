package managers

import (
	"crypto/rand"
	"strings"
)

const slugSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Slugify lowercases the name and replaces every run of
// non-alphanumeric characters with a single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// newPostSlug appends a random disambiguator so slug uniqueness holds
// without a lookup-and-retry loop.
func newPostSlug(title string) (string, error) {
	suffix := make([]byte, 5)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	for i, c := range suffix {
		suffix[i] = slugSuffixAlphabet[int(c)%len(slugSuffixAlphabet)]
	}

	base := Slugify(title)
	if base == "" {
		return string(suffix), nil
	}
	return base + "-" + string(suffix), nil
}
