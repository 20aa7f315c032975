package httputil_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/capgate/capgate/internal/errors"
	"github.com/capgate/capgate/internal/httputil"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, recorder
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeErrorResponse(t *testing.T, recorder *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()

	var response httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "NotFound",
			err:            apperrors.Wrap(apperrors.ErrNotFound, "capability"),
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
		},
		{
			name:           "Conflict",
			err:            apperrors.Wrap(apperrors.ErrConflict, "capability"),
			expectedStatus: http.StatusConflict,
			expectedError:  "conflict",
		},
		{
			name:           "InvalidInput",
			err:            apperrors.Wrap(apperrors.ErrInvalidInput, "bad pattern"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "invalid_input",
		},
		{
			name:           "Forbidden",
			err:            apperrors.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
		},
		{
			name:           "Internal",
			err:            apperrors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, recorder := newTestContext(t)

			httputil.HandleError(c, tt.err, testLogger())

			assert.Equal(t, tt.expectedStatus, recorder.Code)
			assert.Equal(t, tt.expectedError, decodeErrorResponse(t, recorder).Error)
		})
	}

	t.Run("NilError", func(t *testing.T) {
		c, recorder := newTestContext(t)

		httputil.HandleError(c, nil, testLogger())

		assert.Empty(t, recorder.Body.String())
	})

	t.Run("InternalErrorHidesDetails", func(t *testing.T) {
		c, recorder := newTestContext(t)

		httputil.HandleError(c, apperrors.New("connection string leaked"), testLogger())

		response := decodeErrorResponse(t, recorder)
		assert.NotContains(t, response.Message, "connection string")
	})
}

func TestHandleBadRequest(t *testing.T) {
	c, recorder := newTestContext(t)

	httputil.HandleBadRequest(c, apperrors.New("malformed JSON"), testLogger())

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "bad_request", decodeErrorResponse(t, recorder).Error)
}

func TestHandleValidationError(t *testing.T) {
	c, recorder := newTestContext(t)

	httputil.HandleValidationError(c, apperrors.New("principal: must be a valid pattern"), testLogger())

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Equal(t, "validation_error", decodeErrorResponse(t, recorder).Error)
}
