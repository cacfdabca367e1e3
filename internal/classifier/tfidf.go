package classifier

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
)

// DefaultMaxFeatures caps the fitted vocabulary.
const DefaultMaxFeatures = 1000

// tokenPattern keeps runs of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// ErrEmptyVocabulary is returned when fitting leaves no usable term.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stop words or no tokens")

// Vector is a dense feature vector aligned with a fitted vocabulary.
type Vector []float64

// Vectorizer is a fitted TF-IDF transform. It is immutable after Fit and safe
// for concurrent Transform calls.
type Vectorizer struct {
	Vocabulary map[string]int `yaml:"vocabulary"`
	IDF        []float64      `yaml:"idf"`
}

// VectorizerOptions controls fitting.
type VectorizerOptions struct {
	MaxFeatures int
	StopWords   StopWords
}

// Tokenize splits normalized text into terms.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// FitVectorizer builds a vocabulary of at most MaxFeatures terms, keeping the
// most frequent ones across the corpus (ties broken alphabetically), and
// computes smoothed inverse document frequencies:
//
//	idf(t) = ln((1+n) / (1+df(t))) + 1
func FitVectorizer(docs []string, opts VectorizerOptions) (*Vectorizer, error) {
	if len(docs) == 0 {
		return nil, errors.New("cannot fit vectorizer on an empty corpus")
	}
	maxFeatures := opts.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range Tokenize(doc) {
			if opts.StopWords.Contains(term) {
				continue
			}
			termFreq[term]++
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}
	if len(termFreq) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termFreq[terms[i]] != termFreq[terms[j]] {
			return termFreq[terms[i]] > termFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return v, nil
}

// Features returns the vocabulary size.
func (v *Vectorizer) Features() int {
	return len(v.IDF)
}

// Transform maps normalized text to an L2-normalized TF-IDF vector. Terms
// outside the vocabulary are ignored; text with no known term yields the zero
// vector.
func (v *Vectorizer) Transform(text string) Vector {
	vec := make(Vector, len(v.IDF))
	for _, term := range Tokenize(text) {
		if idx, ok := v.Vocabulary[term]; ok {
			vec[idx]++
		}
	}
	var norm float64
	for i, tf := range vec {
		if tf == 0 {
			continue
		}
		vec[i] = tf * v.IDF[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// TransformAll applies Transform to every document.
func (v *Vectorizer) TransformAll(docs []string) []Vector {
	out := make([]Vector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}

// Validate checks that the vocabulary indexes exactly the IDF columns.
func (v *Vectorizer) Validate() error {
	if v == nil {
		return errors.New("vectorizer missing")
	}
	if len(v.IDF) == 0 {
		return ErrEmptyVocabulary
	}
	if len(v.Vocabulary) != len(v.IDF) {
		return fmt.Errorf("vocabulary has %d terms but %d idf weights", len(v.Vocabulary), len(v.IDF))
	}
	used := make([]bool, len(v.IDF))
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) || used[idx] {
			return fmt.Errorf("term %q has invalid column %d", term, idx)
		}
		used[idx] = true
	}
	for i, w := range v.IDF {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return fmt.Errorf("idf weight %d is invalid: %v", i, w)
		}
	}
	return nil
}
