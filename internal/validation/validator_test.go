package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwell/trading-cards/internal/domain"
	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/validation"
)

type testRequest struct {
	Name  string `json:"name" validate:"required,max=10"`
	Sport string `json:"sport,omitempty" validate:"omitempty,sport"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(testRequest{Name: "Prizm", Sport: "basketball"}))
	assert.NoError(t, v.Validate(testRequest{Name: "Prizm"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       testRequest
		wantField string
		wantMsg   string
	}{
		{"missing name", testRequest{}, "name", "is required"},
		{"name too long", testRequest{Name: "Panini Prizm Draft Picks"}, "name", "must not exceed 10 characters"},
		{"unknown sport", testRequest{Name: "Prizm", Sport: "Hockey"}, "sport", "must be Basketball or Football"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_ValidateRows(t *testing.T) {
	v := validation.New()

	rows := []domain.ChecklistRow{
		{CardNumber: 1, PlayerName: "Caleb Williams", CardType: "Base"},
		{CardNumber: -1, PlayerName: "", CardType: "Base"},
	}

	err := v.ValidateRows(rows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	details := domainErr.Details.(map[string]string)
	assert.Equal(t, "is required", details["rows[2].playerName"])
	assert.Equal(t, "must be greater than or equal to 0", details["rows[2].cardNumber"])
	assert.Len(t, details, 2)

	assert.NoError(t, v.ValidateRows(rows[:1]))
	assert.NoError(t, v.ValidateRows(nil))
}
