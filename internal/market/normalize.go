package market

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Query is a parsed location. Normalization lowercases, strips diacritics and
// collapses whitespace, so "Paris 11ème" and "paris 11e" share a key.
type Query struct {
	Raw            string
	Normalized     string
	City           string // e.g. "paris", "le havre"
	Arrondissement int    // 0 when absent
}

// arrondissement suffix after diacritics folding: "11e", "11eme", "1er"
var arrondissementRe = regexp.MustCompile(`\b(\d{1,2})\s*(?:er|eme|e)?\b`)

// ParseLocation normalizes a free-text place name into a Query.
func ParseLocation(raw string) (Query, error) {
	normalized := normalize(raw)
	if normalized == "" {
		return Query{}, fmt.Errorf("%w: empty location", ErrInvalidInput)
	}

	q := Query{Raw: raw, Normalized: normalized}

	if m := arrondissementRe.FindStringSubmatch(normalized); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 20 {
			q.Arrondissement = n
		}
	}

	var cityTokens []string
	for _, token := range strings.Fields(normalized) {
		if token == "arrondissement" || strings.ContainsAny(token, "0123456789") {
			continue
		}
		cityTokens = append(cityTokens, token)
	}
	q.City = strings.Join(cityTokens, " ")

	return q, nil
}

// Keys returns candidate benchmark keys in precedence order: the exact
// arrondissement key first, then the city-level key.
func (q Query) Keys() []string {
	var keys []string
	cityKey := strings.ReplaceAll(q.City, " ", "_")
	if q.Arrondissement > 0 && cityKey != "" {
		keys = append(keys, fmt.Sprintf("%s_%de", cityKey, q.Arrondissement))
	}
	if cityKey != "" {
		keys = append(keys, cityKey)
	}
	return keys
}

func normalize(raw string) string {
	folded := foldDiacritics(strings.ToLower(raw))

	// Collapse punctuation commonly found in place names to spaces, then
	// collapse whitespace runs.
	folded = strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '/':
			return ' '
		}
		return r
	}, folded)

	return strings.Join(strings.Fields(folded), " ")
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
