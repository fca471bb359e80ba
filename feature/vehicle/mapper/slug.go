package mapper

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldLigatures = strings.NewReplacer("ß", "ss", "æ", "ae", "œ", "oe", "ø", "o", "ł", "l", "đ", "d")

// Slugify lowercases s, strips diacritics and collapses every run of characters
// outside [a-z0-9] into a single hyphen.
func Slugify(s string) string {
	s = foldLigatures.Replace(strings.ToLower(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// KeySlug is the slug prefix of an external key. Keys that are already slugs
// (numeric ids) are used as they are; any other key gets a short digest suffix so
// that keys differing only in case or punctuation keep distinct slugs.
func KeySlug(key string) string {
	slug := Slugify(key)
	if slug == key {
		return slug
	}
	sum := sha1.Sum([]byte(key))
	return strings.Trim(slug+"-"+hex.EncodeToString(sum[:])[:8], "-")
}

// TokenSlug turns a vocabulary token such as FRENCH_BED into its reference slug
// (french-bed): lowercase, underscores become hyphens, anything outside [a-z0-9-]
// is removed.
func TokenSlug(token string) string {
	token = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(token)), "_", "-")
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, token)
}

// TokenSlugs maps tokens to slugs, dropping empty results and duplicates.
func TokenSlugs(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		s := TokenSlug(t)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// stripKeySuffix removes a trailing "(key)" from a display name.
func stripKeySuffix(name, key string) string {
	if key == "" {
		return name
	}
	trimmed := strings.TrimSpace(name)
	suffix := "(" + key + ")"
	if strings.HasSuffix(trimmed, suffix) {
		return strings.TrimSpace(strings.TrimSuffix(trimmed, suffix))
	}
	return trimmed
}
