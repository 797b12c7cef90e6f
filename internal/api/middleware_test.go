package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/store"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{"success response", "200", map[string]string{"key": "value"}},
		{"created response", "201", map[string]string{"id": "123"}},
		{"no content response", "204", nil},
		{"bad request error", "400", errors.New("invalid input")},
		{"not found error", "404", errors.New("resource not found")},
		{"error with details", "404", &APIError{Code: "NOT_FOUND", Message: "brand not found", Details: []string{"Panini Prizm"}}},
		{"internal server error", "500", errors.New("internal error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			jsonBytes, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(jsonBytes, &envelope))

			require.Contains(t, envelope, "v", "Envelope must contain version field 'v'")
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
			assert.NotContains(t, envelope, "version")
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"brand": "Topps Chrome"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_ErrorResponse(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", errors.New("validation failed"))
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "validation failed", envelope.Error)
}

func TestEnvelopeTransformer_CodedErrorWithoutDetails(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", &APIError{Code: "NOT_FOUND", Message: "set 7 not found"})
	require.NoError(t, err)

	jsonBytes, err := json.Marshal(result)
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(jsonBytes, &envelope))

	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "NOT_FOUND", envelope["code"])
	assert.Equal(t, "set 7 not found", envelope["error"])
	assert.NotContains(t, envelope, "details")
}

func TestEnvelopeTransformer_ErrorWithDetails(t *testing.T) {
	apiErr := &APIError{
		Code:    "NOT_FOUND",
		Message: `brand "Panini Prism" not found`,
		Details: map[string][]string{"suggestions": {"Panini Prizm"}},
	}

	result, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Equal(t, apiErr.Message, envelope.Error)
	assert.Equal(t, apiErr.Message, envelope.Message)
	assert.Equal(t, apiErr.Details, envelope.Details)
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantNil    bool
		wantStatus int
		wantCode   string
	}{
		{
			name:       "domain not found",
			err:        domainerrors.NotFoundf("set %d not found", 7),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "wrapped domain validation",
			err:        errors.Join(errors.New("context"), domainerrors.Validation("bad sport")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "store not found",
			err:        store.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "store conflict",
			err:        store.ErrAlreadyExists.WithMessage("set exists"),
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:    "domain internal stays hidden",
			err:     domainerrors.Internal("disk on fire"),
			wantNil: true,
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toAPIError(tt.err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.GetStatus())
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}
