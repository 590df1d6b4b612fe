package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

func protected(a *Authenticator, roles ...string) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFrom(r.Context())
		w.Write([]byte(actor.Role + ":" + actor.ID.Hex()))
	})
	if len(roles) > 0 {
		h = RequireRole(roles...)(h)
	}
	return a.Middleware(h)
}

func TestTokenRoundTrip(t *testing.T) {
	a := NewAuthenticator("s3cret", time.Hour)
	id := primitive.NewObjectID()
	token, exp, err := a.NewToken(id.Hex(), models.UserTypeAttorney)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	req := httptest.NewRequest("GET", "/cases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protected(a).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attorney:"+id.Hex(), rr.Body.String())
}

func TestMiddlewareRejects(t *testing.T) {
	a := NewAuthenticator("s3cret", time.Hour)
	other := NewAuthenticator("different", time.Hour)
	foreign, _, _ := other.NewToken(primitive.NewObjectID().Hex(), models.UserTypeAdmin)

	expired := NewAuthenticator("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.NewToken(primitive.NewObjectID().Hex(), models.UserTypeJuror)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: models.UserTypeAdmin}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	badRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "sheriff",
		RegisteredClaims: jwt.RegisteredClaims{Subject: primitive.NewObjectID().Hex(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("s3cret"))

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"garbage", "Bearer asdfasdf"},
		{"wrong secret", "Bearer " + foreign},
		{"expired", "Bearer " + stale},
		{"unsigned", "Bearer " + none},
		{"unknown role", "Bearer " + badRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/cases", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			protected(a).ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestMiddlewareAcceptsQueryToken(t *testing.T) {
	a := NewAuthenticator("s3cret", time.Hour)
	token, _, _ := a.NewToken(primitive.NewObjectID().Hex(), models.UserTypeJuror)

	rr := httptest.NewRecorder()
	protected(a).ServeHTTP(rr, httptest.NewRequest("GET", "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRole(t *testing.T) {
	a := NewAuthenticator("s3cret", time.Hour)
	juror, _, _ := a.NewToken(primitive.NewObjectID().Hex(), models.UserTypeJuror)
	admin, _, _ := a.NewToken(primitive.NewObjectID().Hex(), models.UserTypeAdmin)

	for token, want := range map[string]int{juror: http.StatusForbidden, admin: http.StatusOK} {
		req := httptest.NewRequest("GET", "/admin/cases", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected(a, models.UserTypeAdmin).ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code)
	}
}

func TestNewTokenNeedsSecret(t *testing.T) {
	_, _, err := NewAuthenticator("", time.Hour).NewToken(primitive.NewObjectID().Hex(), models.UserTypeAdmin)
	assert.Error(t, err)
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	r := New()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "alive")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsMiddlewareSetsRequestID(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/api/v1/cases/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/cases/65f0c0ffee0ddba11ca7b0b1", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestNormalizeRoutePath(t *testing.T) {
	assert.Equal(t, "/api/v1/cases/{id}/verdicts", normalizeRoutePath("/api/v1/cases/65f0c0ffee0ddba11ca7b0b1/verdicts"))
	assert.Equal(t, "/api/v1/payments/{id}", normalizeRoutePath("/api/v1/payments/42"))
}
