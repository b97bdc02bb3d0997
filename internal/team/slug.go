package team

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// MinSlugLength is the shortest slug accepted before a fallback is generated.
const MinSlugLength = 3

var (
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9_-]+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// ToSlug normalizes free text into a URL-safe identifier. It never fails and
// may return an empty string for input made only of symbols.
func ToSlug(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// EffectiveSlug derives the stored slug from the requested slug, or from the
// team name when no slug is given. Results shorter than MinSlugLength are
// replaced with a random "team-xxxxxx" slug.
func EffectiveSlug(name, slug string) (string, error) {
	source := slug
	if strings.TrimSpace(source) == "" {
		source = name
	}
	if s := ToSlug(source); len(s) >= MinSlugLength {
		return s, nil
	}

	suffix, err := randomBase36(6)
	if err != nil {
		return "", err
	}
	return "team-" + strings.ToLower(suffix), nil
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomBase36(n int) (string, error) {
	max := big.NewInt(int64(len(base36)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating random bytes: %w", err)
		}
		b[i] = base36[idx.Int64()]
	}
	return string(b), nil
}
