package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Messages: []string{"state is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Code: services.CodeSlotUnavailable, Message: "slot taken"}, http.StatusConflict, services.CodeSlotUnavailable},
		{"wrapped conflict", errors.Wrap(&services.ConflictError{Code: services.CodeCaseFull, Message: "full"}, "approve"), http.StatusConflict, services.CodeCaseFull},
		{"not found", errors.Wrap(services.ErrNotFound, "case"), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"locked out", services.ErrTooManyAttempts, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS"},
		{"timeout", errors.Wrap(context.DeadlineExceeded, "find"), http.StatusRequestTimeout, "TIMEOUT"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeServiceError(rr, httptest.NewRequest("GET", "/api/v1/cases", nil), tt.err)

			assert.Equal(t, tt.status, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, tt.code, body.Code)
			assert.False(t, body.Success)
		})
	}
}

func TestWriteServiceErrorDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, httptest.NewRequest("POST", "/", nil), &services.ValidationError{Messages: []string{"a", "b"}})

	assert.Equal(t, []string{"a", "b"}, decodeError(t, rr).Details)
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = mux.SetURLVars(req, map[string]string{"case_id": "5f2b8f6e9d3e2a0001a1b2c3"})
	rr := httptest.NewRecorder()

	id, ok := pathID(rr, req, "case_id")
	assert.True(t, ok)
	assert.Equal(t, "5f2b8f6e9d3e2a0001a1b2c3", id.Hex())

	req = mux.SetURLVars(req, map[string]string{"case_id": "1234"})
	_, ok = pathID(rr, req, "case_id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetPage(t *testing.T) {
	p := getPage(httptest.NewRequest("GET", "/?page=3&limit=500", nil))
	assert.Equal(t, int64(3), p.Page)
	assert.Equal(t, int64(100), p.Limit)

	p = getPage(httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, int64(1), p.Page)
	assert.Equal(t, int64(20), p.Limit)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
