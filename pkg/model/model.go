package model

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/PeetV/csml-sub000/pkg/core"
)

var log = logrus.WithField("pkg", "model")

// Mode selects between classification and regression behaviour.
type Mode int

const (
	// Classification treats distinct target values as class labels.
	Classification Mode = iota
	// Regression treats the target as a continuous value.
	Regression
)

func (m Mode) valid() bool {
	return m == Classification || m == Regression
}

func (m Mode) String() string {
	switch m {
	case Classification:
		return "classification"
	case Regression:
		return "regression"
	}
	return "unknown"
}

// ParseMode converts a mode name to a Mode, rejecting unknown names at
// configuration time.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "classification":
		return Classification, nil
	case "regression":
		return Regression, nil
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "unknown mode %q", s)
}

// PurityFunc measures impurity of a slice of target values (0 = pure,
// lower is better). Gini and entropy fit classification, standard
// deviation fits regression; see pkg/stats.
type PurityFunc func([]float64) float64

// Model is the supervised learning interface satisfied by Tree and Forest.
type Model interface {
	Train(m *core.Matrix, target []float64) error
	Predict(m *core.Matrix) ([]float64, error)
}

// ClassPrediction pairs a predicted label with the per-label probability
// estimates that produced it. Probabilities sum to 1 across observed labels.
type ClassPrediction struct {
	Label         float64
	Probabilities map[float64]float64
}
