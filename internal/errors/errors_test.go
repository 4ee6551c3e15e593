package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/ROOTS/internal/logging"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New("run not found"),
			want: "run not found",
		},
		{
			name: "operation and component",
			err:  New("solve failed").WithOperation("solve").WithComponent("server"),
			want: "solve failed: operation=solve, component=server",
		},
		{
			name: "wrapped",
			err:  Wrap(fmt.Errorf("singular step"), "solve failed"),
			want: "solve failed: singular step",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "plain error", err: stderrors.New("boom"), want: http.StatusInternalServerError},
		{name: "no status", err: New("boom"), want: http.StatusInternalServerError},
		{name: "bad request", err: BadRequest("lower %g", 1.0), want: http.StatusBadRequest},
		{name: "not found", err: NotFound("run %s", "x"), want: http.StatusNotFound},
		{name: "explicit", err: New("bad").WithStatus(http.StatusUnprocessableEntity), want: http.StatusUnprocessableEntity},
		{name: "wrapped inherits", err: Wrap(BadRequest("bad"), "decode"), want: http.StatusBadRequest},
		{name: "fmt wrapped", err: fmt.Errorf("handler: %w", NotFound("gone")), want: http.StatusNotFound},
		{name: "inner status below outer without", err: &Error{Err: NotFound("gone")}, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestWrapKeepsChain(t *testing.T) {
	sentinel := stderrors.New("sentinel")

	wrapped := Wrapf(sentinel, "solve %s", "newton")

	assert.True(t, Is(wrapped, sentinel))
	assert.Equal(t, sentinel, Unwrap(wrapped))
	assert.Equal(t, "solve newton: sentinel", wrapped.Error())

	var target *Error
	assert.True(t, As(fmt.Errorf("outer: %w", wrapped), &target))
	assert.Equal(t, "solve newton", target.Message)
	assert.False(t, As(nil, &target))

	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestStackTrace(t *testing.T) {
	err := Errorf("failed after %d iterations", 3)

	assert.Equal(t, "failed after 3 iterations", err.Message)
	require.NotEmpty(t, err.StackTrace())
	for _, frame := range err.StackTrace() {
		assert.NotContains(t, frame, "getStackTrace")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.InfoLevel, &buf)

	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("expression blew up")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/solve?x=1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Recovered from panic", entry["message"])
	assert.Equal(t, "expression blew up", entry["error"])
	assert.Equal(t, "/api/v1/solve", entry["path"])
	assert.Equal(t, "x=1", entry["query"])
}

func TestRecoveryMiddlewareRepanicsOnAbort(t *testing.T) {
	logger := logging.New(logging.InfoLevel, &bytes.Buffer{})
	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		status int
		logged bool
	}{
		{name: "ok", status: http.StatusOK, logged: false},
		{name: "client error", status: http.StatusBadRequest, logged: false},
		{name: "server error", status: http.StatusInternalServerError, logged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := ErrorHandler(logging.New(logging.InfoLevel, &buf))(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				}),
			)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/x", nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.logged {
				assert.Contains(t, buf.String(), "Request error")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
