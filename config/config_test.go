package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
}

func TestNewDefaults(t *testing.T) {
	os.Unsetenv("NOTIFICATION_RETENTION_DAYS")
	os.Setenv("EVENT_RETENTION_DAYS", "not-a-number")
	os.Unsetenv("REQUEST_TIMEOUT_SECONDS")
	defer os.Unsetenv("EVENT_RETENTION_DAYS")

	conf := New()

	assert.Equal(t, 90, conf.NotificationRetentionDays)
	assert.Equal(t, 180, conf.EventRetentionDays)
	assert.Equal(t, 30*time.Second, conf.RequestTimeout)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"response": "error it borked, bad request"}`, rr.Body.String())
}

func TestErrorStatusEscapesQuotes(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("failed to decode request body", http.StatusBadRequest, rr, errors.New(`invalid character '"' after "name"`))

	var body map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, `failed to decode request body, invalid character '"' after "name"`, body["response"])
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
