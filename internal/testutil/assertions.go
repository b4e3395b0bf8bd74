package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies the status and that the JSON message contains
// expectedMessage
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body struct {
		Message string `json:"message"`
	}
	AssertJSONResponse(t, resp, &body)
	assert.Contains(t, body.Message, expectedMessage, "error message mismatch")
}

// AssertNutrients compares nutrient values with a small tolerance for float
// accumulation
func AssertNutrients(t *testing.T, expected, actual domain.Nutrients) {
	t.Helper()

	assert.InDelta(t, expected.Calories, actual.Calories, 1e-6, "calories")
	assert.InDelta(t, expected.Protein, actual.Protein, 1e-6, "protein")
	assert.InDelta(t, expected.Carbohydrates, actual.Carbohydrates, 1e-6, "carbohydrates")
	assert.InDelta(t, expected.Fats, actual.Fats, 1e-6, "fats")
	assert.InDelta(t, expected.Vitamins, actual.Vitamins, 1e-6, "vitamins")
	assert.InDelta(t, expected.Minerals, actual.Minerals, 1e-6, "minerals")
}
