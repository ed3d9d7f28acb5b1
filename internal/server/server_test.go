package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

func newTestServer(t *testing.T, token string) *Server {
	t.Helper()
	store, err := jsonstore.Open(t.TempDir())
	require.NoError(t, err)
	return New(store, Options{Token: token, Mode: gin.TestMode})
}

func do(t *testing.T, s *Server, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCreateListToggleDelete(t *testing.T) {
	s := newTestServer(t, "")

	w := do(t, s, PathCreate, CreateRequest{Body: "Buy milk"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[DataResponse[model.Todo]](t, w).Data
	assert.Equal(t, "Buy milk", created.Body)
	assert.Equal(t, model.StatusPending, created.Status)

	w = do(t, s, PathUpdateStatus, map[string]any{"todoId": created.ID, "status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusCompleted, decode[DataResponse[model.Todo]](t, w).Data.Status)

	w = do(t, s, PathGetAll, GetAllRequest{Statuses: []model.Status{model.StatusPending}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[DataResponse[[]model.Todo]](t, w).Data)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	w = do(t, s, PathGetAll, GetAllRequest{Statuses: []model.Status{model.StatusCompleted}})
	require.Len(t, decode[DataResponse[[]model.Todo]](t, w).Data, 1)

	w = do(t, s, PathDelete, map[string]any{"id": created.ID})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, PathDelete, map[string]any{"id": created.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrCodeNotFound, decode[ErrorResponse](t, w).Error.Code)
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, "")

	w := do(t, s, PathCreate, CreateRequest{Body: "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[ErrorResponse](t, w).Error
	assert.Equal(t, ErrCodeValidation, body.Code)
	assert.Equal(t, ReasonEmptyBody, body.Reason)

	w = do(t, s, PathGetAll, map[string]any{"statuses": []string{"archived"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ReasonInvalidStatus, decode[ErrorResponse](t, w).Error.Reason)

	w = do(t, s, PathUpdateStatus, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeBadRequest, decode[ErrorResponse](t, w).Error.Code)

	w = do(t, s, PathDelete, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBearerAuth(t *testing.T) {
	s := newTestServer(t, "s3cret")

	w := do(t, s, PathGetAll, GetAllRequest{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, ErrCodeUnauthorized, decode[ErrorResponse](t, w).Error.Code)

	w = do(t, s, PathGetAll, GetAllRequest{}, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, PathGetAll, GetAllRequest{}, "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t, "s3cret")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, PathHealth, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
