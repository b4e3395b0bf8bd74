package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "unauthenticated",
			err:             fmt.Errorf("%w: invalid session token", domain.ErrUnauthenticated),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "invalid session token",
		},
		{
			name:            "validation",
			err:             fmt.Errorf("%w: name is required", domain.ErrValidation),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "name is required",
		},
		{
			name:            "conflict shares the validation status",
			err:             fmt.Errorf("%w: a meal of type lunch already exists for this date", domain.ErrConflict),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "a meal of type lunch already exists for this date",
		},
		{
			name:            "not found",
			err:             fmt.Errorf("%w: meal not found", domain.ErrNotFound),
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "meal not found",
		},
		{
			name:            "unclassified",
			err:             errors.New("pq: connection reset"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, logger.Component(logger.Discard(), "test"), "op", tt.err)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedMessage, body.Message)
		})
	}
}
