package classifier

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"swiggy", "order", "café"}, Tokenize("swiggy order a café x"))
	assert.Empty(t, Tokenize(""))
}

func TestStopWordsByName(t *testing.T) {
	english, ok := StopWordsByName("English")
	require.True(t, ok)
	assert.True(t, english.Contains("the"))
	assert.False(t, english.Contains("swiggy"))

	none, ok := StopWordsByName("none")
	require.True(t, ok)
	assert.False(t, none.Contains("the"))

	_, ok = StopWordsByName("klingon")
	assert.False(t, ok)

	var nilSet StopWords
	assert.False(t, nilSet.Contains("the"))
}

func TestFitVectorizer(t *testing.T) {
	docs := []string{"swiggy order food", "uber ride", "swiggy dinner", "the and of"}

	v, err := FitVectorizer(docs, VectorizerOptions{StopWords: EnglishStopWords()})
	require.NoError(t, err)
	require.NoError(t, v.Validate())

	assert.Equal(t, map[string]int{
		"dinner": 0, "food": 1, "order": 2, "ride": 3, "swiggy": 4, "uber": 5,
	}, v.Vocabulary)
	assert.InDelta(t, math.Log(5.0/3.0)+1, v.IDF[4], 1e-12)
	assert.InDelta(t, math.Log(5.0/2.0)+1, v.IDF[0], 1e-12)
}

func TestFitVectorizer_MaxFeatures(t *testing.T) {
	docs := []string{"swiggy order food", "uber ride", "swiggy dinner"}

	v, err := FitVectorizer(docs, VectorizerOptions{MaxFeatures: 2})
	require.NoError(t, err)

	// swiggy is the most frequent term; the rest tie and are taken alphabetically.
	assert.Equal(t, map[string]int{"dinner": 0, "swiggy": 1}, v.Vocabulary)
}

func TestFitVectorizer_Errors(t *testing.T) {
	_, err := FitVectorizer(nil, VectorizerOptions{})
	assert.Error(t, err)

	_, err = FitVectorizer([]string{"the of and", ""}, VectorizerOptions{StopWords: EnglishStopWords()})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestVectorizer_Transform(t *testing.T) {
	v, err := FitVectorizer([]string{"swiggy order", "uber ride"}, VectorizerOptions{})
	require.NoError(t, err)

	vec := v.Transform("swiggy unknownterm swiggy")
	require.Len(t, vec, v.Features())
	assert.InDelta(t, 1.0, vec[v.Vocabulary["swiggy"]], 1e-12)
	assert.Zero(t, vec[v.Vocabulary["uber"]])

	empty := v.Transform("")
	for _, x := range empty {
		assert.Zero(t, x)
	}

	assert.Equal(t, v.Transform("uber ride"), v.Transform("uber ride"))
}

func TestVectorizer_ValidateRejectsMismatch(t *testing.T) {
	v := &Vectorizer{Vocabulary: map[string]int{"a": 0, "b": 0}, IDF: []float64{1, 1}}
	assert.Error(t, v.Validate())

	v = &Vectorizer{Vocabulary: map[string]int{"a": 0}, IDF: []float64{1, 2}}
	assert.Error(t, v.Validate())

	var missing *Vectorizer
	assert.Error(t, missing.Validate())
}

func TestNaiveBayes_FitPredict(t *testing.T) {
	x := []Vector{{1, 0}, {0.9, 0.1}, {0, 1}, {0.1, 0.9}}
	y := []string{"Food", "Food", "Transport", "Transport"}

	nb, err := FitNaiveBayes(x, y, DefaultAlpha)
	require.NoError(t, err)
	require.NoError(t, nb.Validate())
	assert.Equal(t, []string{"Food", "Transport"}, nb.Classes)
	assert.InDelta(t, math.Log(0.5), nb.ClassLogPrior[0], 1e-12)

	got, err := nb.Predict(Vector{1, 0})
	require.NoError(t, err)
	assert.Equal(t, "Food", got)

	got, err = nb.Predict(Vector{0, 1})
	require.NoError(t, err)
	assert.Equal(t, "Transport", got)
}

func TestNaiveBayes_TieGoesToFirstClass(t *testing.T) {
	nb, err := FitNaiveBayes([]Vector{{1, 0}, {0, 1}}, []string{"Zeta", "Alpha"}, 1)
	require.NoError(t, err)

	got, err := nb.Predict(Vector{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got)
}

func TestNaiveBayes_Errors(t *testing.T) {
	_, err := FitNaiveBayes(nil, nil, 1)
	assert.Error(t, err)

	_, err = FitNaiveBayes([]Vector{{1}}, []string{"a", "b"}, 1)
	assert.Error(t, err)

	_, err = FitNaiveBayes([]Vector{{1}}, []string{"a"}, 0)
	assert.Error(t, err)

	_, err = FitNaiveBayes([]Vector{{1, 0}, {1}}, []string{"a", "b"}, 1)
	assert.Error(t, err)

	var unfitted *NaiveBayes
	_, err = unfitted.Predict(Vector{1})
	assert.ErrorIs(t, err, ErrNotFitted)

	nb, err := FitNaiveBayes([]Vector{{1, 0}}, []string{"a"}, 1)
	require.NoError(t, err)
	_, err = nb.Predict(Vector{1, 0, 0})
	assert.Error(t, err)
}

func trainingSet() ([]string, []string) {
	food := []string{"swiggy order", "zomato dinner", "swiggy lunch", "dominos pizza", "zomato order food",
		"swiggy breakfast", "restaurant bill", "cafe coffee", "swiggy snacks", "zomato lunch"}
	transport := []string{"uber ride", "ola cab", "uber trip home", "metro card recharge", "ola auto",
		"uber airport", "fuel petrol pump", "rapido bike", "uber office", "ola outstation"}

	var texts, labels []string
	for _, s := range food {
		texts = append(texts, s)
		labels = append(labels, "Food")
	}
	for _, s := range transport {
		texts = append(texts, s)
		labels = append(labels, "Transport")
	}
	return texts, labels
}

func TestFit_Bundle(t *testing.T) {
	texts, labels := trainingSet()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	b, err := Fit(texts, labels, TrainOptions{StopWords: EnglishStopWords(), Now: func() time.Time { return fixed }})
	require.NoError(t, err)
	require.NoError(t, b.Validate())

	assert.Equal(t, FormatVersion, b.FormatVersion)
	assert.Equal(t, 20, b.Samples)
	assert.Equal(t, fixed, b.TrainedAt)
	assert.Equal(t, []string{"Food", "Transport"}, b.Classes())

	correct := 0
	for i, text := range texts {
		got, err := b.Predict(text)
		require.NoError(t, err)
		if got == labels[i] {
			correct++
		}
	}
	assert.Greater(t, correct, len(texts)/2, "training accuracy must beat a coin flip")

	got, err := b.Predict("swiggy dinner")
	require.NoError(t, err)
	assert.Equal(t, "Food", got)
}

func TestBundle_ValidateRejectsMismatchedHalves(t *testing.T) {
	texts, labels := trainingSet()
	a, err := Fit(texts, labels, TrainOptions{})
	require.NoError(t, err)
	b, err := Fit(texts[:12], labels[:12], TrainOptions{})
	require.NoError(t, err)

	mixed := *a
	mixed.Model = b.Model
	if a.Vectorizer.Features() != b.Model.Features() {
		assert.Error(t, mixed.Validate())
	}

	old := *a
	old.FormatVersion = 0
	assert.ErrorContains(t, old.Validate(), "unsupported bundle format")

	noID := *a
	noID.ID = "not-a-uuid"
	assert.Error(t, noID.Validate())

	var missing *Bundle
	assert.Error(t, missing.Validate())
	_, err = missing.Predict("x")
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFit_Errors(t *testing.T) {
	_, err := Fit([]string{"a"}, nil, TrainOptions{})
	assert.Error(t, err)

	_, err = Fit([]string{"the", "of"}, []string{"x", "y"}, TrainOptions{StopWords: EnglishStopWords()})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func ExampleBundle_Predict() {
	texts, labels := trainingSet()
	b, _ := Fit(texts, labels, TrainOptions{StopWords: EnglishStopWords()})
	label, _ := b.Predict("uber ride")
	fmt.Println(label)
	// Output: Transport
}
