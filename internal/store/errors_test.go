package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/birdwell/trading-cards/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &store.Error{
		Code:    http.StatusNotFound,
		Message: "not found",
		Err:     cause,
	}

	assert.Contains(t, err.Error(), "not found")
	assert.Contains(t, err.Error(), "underlying error")
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_HTTPCode(t *testing.T) {
	assert.Equal(t, http.StatusConflict, store.ErrAlreadyExists.HTTPCode())
}

func TestError_SentinelsSurviveDecoration(t *testing.T) {
	err := store.ErrNotFound.WithMessage("set 4 not found")
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.False(t, errors.Is(err, store.ErrAlreadyExists))

	wrapped := fmt.Errorf("get set: %w", store.ErrAlreadyExists.WithCause(errors.New("unique")))
	assert.True(t, errors.Is(wrapped, store.ErrAlreadyExists))
	assert.True(t, store.IsNotFound(fmt.Errorf("x: %w", store.ErrNotFound)))
}
