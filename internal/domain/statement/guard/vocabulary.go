// Package guard rejects decoded documents that do not look like bank statements.
// It scans text for banking vocabulary with an Aho-Corasick automaton and, for OCR
// output, tolerates single-character recognition errors.
package guard

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultKeywords is the built-in financial vocabulary, lowercase.
var DefaultKeywords = []string{
	"balance", "statement", "account", "transaction", "debit", "credit", "deposit",
	"withdrawal", "payment", "interest", "transfer", "bank", "amount", "opening",
	"closing", "iban", "sort code", "card", "fee", "charge", "salary",
	// de, fr, es, nl, ms, id, ar-latin
	"saldo", "konto", "kontoauszug", "überweisung", "relevé", "solde", "compte",
	"virement", "extracto", "cuenta", "rekening", "mutasi", "penyata", "akaun",
	"baki", "kredit", "debet", "riyal", "dirham",
}

// minFuzzyLength is the shortest token compared with edit distance. Shorter
// words produce too many accidental near-matches.
const minFuzzyLength = 6

// Vocabulary checks text for financial keywords.
type Vocabulary struct {
	keywords []string
	matcher  *ahocorasick.Matcher
	long     []string
}

// NewVocabulary builds a matcher over keywords. Keywords are lowercased.
func NewVocabulary(keywords []string) *Vocabulary {
	v := &Vocabulary{keywords: make([]string, 0, len(keywords))}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		v.keywords = append(v.keywords, k)
		if len([]rune(k)) >= minFuzzyLength {
			v.long = append(v.long, k)
		}
	}
	v.matcher = ahocorasick.NewStringMatcher(v.keywords)
	return v
}

// Default returns a Vocabulary over DefaultKeywords.
func Default() *Vocabulary {
	return NewVocabulary(DefaultKeywords)
}

// Matches returns the distinct keywords found in text.
func (v *Vocabulary) Matches(text string) []string {
	if len(v.keywords) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	hits := v.matcher.MatchThreadSafe([]byte(lower))
	out := make([]string, 0, len(hits))
	for _, i := range hits {
		if containsWord(lower, v.keywords[i]) {
			out = append(out, v.keywords[i])
		}
	}
	return out
}

// containsWord reports whether kw occurs in s as a whole word, allowing a plural
// "s" or "es", so "fees" counts but "coffee" does not.
func containsWord(s, kw string) bool {
	for from := 0; from < len(s); {
		idx := strings.Index(s[from:], kw)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(kw)
		if boundaryBefore(s, start) && (boundaryAfter(s, end) || pluralEnd(s, end)) {
			return true
		}
		from = start + 1
	}
	return false
}

func pluralEnd(s string, i int) bool {
	rest := s[i:]
	return (strings.HasPrefix(rest, "s") && boundaryAfter(s, i+1)) ||
		(strings.HasPrefix(rest, "es") && boundaryAfter(s, i+2))
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Recognizes reports whether text contains financial vocabulary. When tolerant is
// set, tokens within one edit of a long keyword also count, which absorbs typical
// OCR misreads such as "ba1ance" or "statemnt".
func (v *Vocabulary) Recognizes(text string, tolerant bool) bool {
	if len(v.Matches(text)) > 0 {
		return true
	}
	if !tolerant {
		return false
	}

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	for _, tok := range tokens {
		if len([]rune(tok)) < minFuzzyLength {
			continue
		}
		for _, k := range v.long {
			if fuzzy.LevenshteinDistance(tok, k) <= 1 {
				return true
			}
		}
	}
	return false
}
