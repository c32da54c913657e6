package model

import "github.com/pkg/errors"

// Every rejected input maps onto one of these sentinels so callers can
// branch on the kind with errors.Is. Wrapped variants carry call-site
// context.
var (
	// ErrShapeMismatch flags a target length that differs from the matrix
	// row count, or an inference column count that differs from the one
	// recorded at training time.
	ErrShapeMismatch = errors.New("model: shape mismatch")

	// ErrEmptyInput flags zero rows handed to Train or Predict.
	ErrEmptyInput = errors.New("model: empty input")

	// ErrNotTrained flags Predict on a model with no successful Train.
	ErrNotTrained = errors.New("model: not trained")

	// ErrModeMismatch flags a classification-only operation on a
	// regression model.
	ErrModeMismatch = errors.New("model: mode mismatch")

	// ErrInvalidConfig flags a bad hyperparameter at configuration time.
	ErrInvalidConfig = errors.New("model: invalid configuration")

	// ErrLimitExceeded flags an internal consistency counter blowing its
	// hard cap, e.g. a prediction walk that never reaches a leaf.
	ErrLimitExceeded = errors.New("model: internal limit exceeded")
)
