package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_StatusCode(t *testing.T) {
	cases := map[ErrorKind]int{
		KindValidation:        http.StatusBadRequest,
		KindUnauthenticated:   http.StatusUnauthorized,
		KindInvalidCredential: http.StatusUnauthorized,
		KindForbidden:         http.StatusForbidden,
		KindNotFound:          http.StatusNotFound,
		KindConflict:          http.StatusConflict,
		KindDependency:        http.StatusInternalServerError,
		KindPartialFailure:    http.StatusInternalServerError,
		KindInternal:          http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, (&AppError{Kind: kind}).StatusCode(), kind)
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("socket closed")
	wrapped := fmt.Errorf("create alert: %w", NewDependencyError("store unavailable", cause))

	assert.Equal(t, KindDependency, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("validation details", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		HandleError(c, NewValidationError(ErrValidationFailed, map[string]string{"Email": "Email is required"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, StatusError, body.Status)
		require.NotNil(t, body.Error)
		assert.Equal(t, string(KindValidation), body.Error.Code)
		assert.Equal(t, "Email is required", body.Error.Details["Email"])
	})

	t.Run("plain errors hide the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		HandleError(c, errors.New("mongo: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		require.NotNil(t, body.Error)
		assert.Equal(t, ErrInternalServer, body.Error.Message)
		assert.NotContains(t, w.Body.String(), "mongo")
		assert.Len(t, c.Errors, 1)
	})

	t.Run("client errors are not recorded", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		HandleError(c, NewNotFoundError("Distress not found"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Distress not found", decode(t, w).Error.Message)
		assert.Empty(t, c.Errors)
	})
}
