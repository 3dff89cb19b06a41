// Package textnorm normalizes raw text into the token sequences the
// scoring engine consumes: lowercased, stripped of non-alphabetic runes,
// stopword-filtered and lemmatized. Normalization is idempotent: running
// it over its own output is a no-op.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"

	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/errors"
)

// nonAlphabetic matches everything outside lowercase letters and
// apostrophes, mirroring the cleaning regex applied to the source tables.
var nonAlphabetic = regexp.MustCompile(`[^a-z']+`)

// Normalizer maps raw text to normalized token sequences.
type Normalizer struct {
	lemmatizer *golem.Lemmatizer
	stopwords  map[string]struct{}
}

// New creates a Normalizer backed by the English lemma dictionary.
func New() (*Normalizer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, errors.InternalError("loading english lemma dictionary", err)
	}

	return &Normalizer{
		lemmatizer: lemmatizer,
		stopwords:  defaultStopwords,
	}, nil
}

// Normalize converts raw text into an ordered token sequence: lowercase,
// strip non-alphabetic runes (apostrophes survive), drop stopwords,
// lemmatize, and discard tokens of length one or less.
func (n *Normalizer) Normalize(raw string) []string {
	cleaned := nonAlphabetic.ReplaceAllString(strings.ToLower(raw), " ")
	words := strings.Fields(cleaned)

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if _, stop := n.stopwords[word]; stop {
			continue
		}

		lemma := n.lemmatizer.Lemma(word)
		if len(lemma) <= 1 {
			continue
		}
		if _, stop := n.stopwords[lemma]; stop {
			continue
		}

		tokens = append(tokens, lemma)
	}
	return tokens
}
