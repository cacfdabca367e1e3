package classifier

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultAlpha is the additive (Laplace) smoothing parameter.
const DefaultAlpha = 1.0

// ErrNotFitted is returned when predicting with an empty model.
var ErrNotFitted = errors.New("classifier is not fitted")

// NaiveBayes is a fitted multinomial Naive Bayes model. Classes are kept in
// sorted order, which is also the tie-break order for Predict.
type NaiveBayes struct {
	Alpha          float64     `yaml:"alpha"`
	Classes        []string    `yaml:"classes"`
	ClassLogPrior  []float64   `yaml:"class_log_prior"`
	FeatureLogProb [][]float64 `yaml:"feature_log_prob"`
}

// FitNaiveBayes estimates class priors and per-class feature likelihoods
// from feature vectors aligned 1:1 with labels.
func FitNaiveBayes(x []Vector, y []string, alpha float64) (*NaiveBayes, error) {
	if len(x) == 0 {
		return nil, errors.New("cannot fit classifier without samples")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("got %d vectors but %d labels", len(x), len(y))
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("alpha must be positive, got %v", alpha)
	}
	features := len(x[0])
	if features == 0 {
		return nil, errors.New("cannot fit classifier on zero-width vectors")
	}

	index := make(map[string]int)
	for _, label := range y {
		index[label] = 0
	}
	classes := make([]string, 0, len(index))
	for label := range index {
		classes = append(classes, label)
	}
	sort.Strings(classes)
	for i, label := range classes {
		index[label] = i
	}

	classCount := make([]float64, len(classes))
	featureCount := make([][]float64, len(classes))
	for i := range featureCount {
		featureCount[i] = make([]float64, features)
	}
	for i, vec := range x {
		if len(vec) != features {
			return nil, fmt.Errorf("sample %d has %d features, expected %d", i, len(vec), features)
		}
		c := index[y[i]]
		classCount[c]++
		for j, val := range vec {
			featureCount[c][j] += val
		}
	}

	nb := &NaiveBayes{
		Alpha:          alpha,
		Classes:        classes,
		ClassLogPrior:  make([]float64, len(classes)),
		FeatureLogProb: make([][]float64, len(classes)),
	}
	total := float64(len(x))
	for c := range classes {
		nb.ClassLogPrior[c] = math.Log(classCount[c] / total)

		var sum float64
		for _, fc := range featureCount[c] {
			sum += fc
		}
		denom := math.Log(sum + alpha*float64(features))
		row := make([]float64, features)
		for j, fc := range featureCount[c] {
			row[j] = math.Log(fc+alpha) - denom
		}
		nb.FeatureLogProb[c] = row
	}
	return nb, nil
}

// Features returns the input width the model was fitted on.
func (nb *NaiveBayes) Features() int {
	if nb == nil || len(nb.FeatureLogProb) == 0 {
		return 0
	}
	return len(nb.FeatureLogProb[0])
}

// JointLogLikelihood returns the unnormalized log posterior of every class.
func (nb *NaiveBayes) JointLogLikelihood(x Vector) ([]float64, error) {
	if nb == nil || len(nb.Classes) == 0 {
		return nil, ErrNotFitted
	}
	if len(x) != nb.Features() {
		return nil, fmt.Errorf("vector has %d features, model expects %d", len(x), nb.Features())
	}
	scores := make([]float64, len(nb.Classes))
	for c := range nb.Classes {
		score := nb.ClassLogPrior[c]
		for j, val := range x {
			if val != 0 {
				score += val * nb.FeatureLogProb[c][j]
			}
		}
		scores[c] = score
	}
	return scores, nil
}

// Predict returns the class with the highest posterior. Ties go to the class
// that sorts first.
func (nb *NaiveBayes) Predict(x Vector) (string, error) {
	scores, err := nb.JointLogLikelihood(x)
	if err != nil {
		return "", err
	}
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	if math.IsNaN(scores[best]) {
		return "", errors.New("posterior is not a number")
	}
	return nb.Classes[best], nil
}

// Validate checks that all parameter tables agree in shape.
func (nb *NaiveBayes) Validate() error {
	if nb == nil || len(nb.Classes) == 0 {
		return ErrNotFitted
	}
	if len(nb.ClassLogPrior) != len(nb.Classes) || len(nb.FeatureLogProb) != len(nb.Classes) {
		return fmt.Errorf("model has %d classes but %d priors and %d likelihood rows",
			len(nb.Classes), len(nb.ClassLogPrior), len(nb.FeatureLogProb))
	}
	width := nb.Features()
	if width == 0 {
		return errors.New("model has zero-width likelihood table")
	}
	for c, row := range nb.FeatureLogProb {
		if len(row) != width {
			return fmt.Errorf("likelihood row %d has %d features, expected %d", c, len(row), width)
		}
	}
	if !sort.StringsAreSorted(nb.Classes) {
		return errors.New("classes are not in canonical order")
	}
	return nil
}
