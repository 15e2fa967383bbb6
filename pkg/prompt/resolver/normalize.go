package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

// Word prefixes stripped before matching: conjunction/preposition + definite article.
var articlePrefixes = []string{"وال", "بال", "فال", "كال", "لل", "ال"}

// Words that only qualify a place name.
var placeQualifiers = map[string]bool{
	"محافظه":      true,
	"مدينه":       true,
	"governorate": true,
	"gov":         true,
	"city":        true,
}

var letterFolds = strings.NewReplacer(
	"ٱ", "ا",
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ة", "ه",
	"ى", "ي",
)

// NormalizeArabic folds spelling variants so governorate names can be compared:
// diacritics and tatweel go, alef/teh-marbuta/alef-maksura are unified, Latin is
// lowercased, punctuation becomes spaces and the definite article is stripped per word.
func NormalizeArabic(s string) string {
	if s == "" {
		return ""
	}

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == tatweel })),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = letterFolds.Replace(strings.ToLower(folded))

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	words := make([]string, 0, len(fields))
	for _, w := range fields {
		w = stripArticle(w)
		if placeQualifiers[w] {
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

func stripArticle(word string) string {
	for _, p := range articlePrefixes {
		if strings.HasPrefix(word, p) {
			rest := strings.TrimPrefix(word, p)
			// Keep short words such as "الف" intact.
			if len([]rune(rest)) >= 2 {
				return rest
			}
		}
	}
	return word
}
