package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// DefaultTokenTTL is how long an access token stays valid
const DefaultTokenTTL = 24 * time.Hour

// Claims are the access token claims. Subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator signs and checks HS256 access tokens
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator returns an authenticator signing with secret
func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewToken signs a token for the user. It satisfies services.TokenIssuer.
func (a *Authenticator) NewToken(subject, role string) (string, time.Time, error) {
	if len(a.secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is not set")
	}
	issued := a.now()
	exp := issued.Add(a.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "token generation failed")
	}
	return signed, exp, nil
}

// ParseToken verifies the signature and expiry and returns the claims
func (a *Authenticator) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	switch claims.Role {
	case models.UserTypeAdmin, models.UserTypeAttorney, models.UserTypeJuror:
	default:
		return nil, errors.Errorf("unknown role %q", claims.Role)
	}
	if _, err := primitive.ObjectIDFromHex(claims.Subject); err != nil {
		return nil, errors.Wrap(err, "invalid subject")
	}
	return claims, nil
}

// tokenFromRequest reads the bearer token. Browsers cannot set headers on a websocket
// handshake so the token query parameter is accepted too.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// Middleware rejects requests without a valid token and puts the actor on the context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			unauthorized(w, "missing bearer token")
			return
		}
		claims, err := a.ParseToken(raw)
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.Path, "error", err)
			unauthorized(w, "invalid or expired token")
			return
		}
		id, _ := primitive.ObjectIDFromHex(claims.Subject)
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), services.Actor{ID: id, Role: claims.Role})))
	})
}

// RequireRole only lets the given roles through. It must run after Middleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "forbidden", Code: "FORBIDDEN"})
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg, Code: "UNAUTHORIZED"})
}

type actorKey struct{}

// WithActor stores the authenticated actor on ctx
func WithActor(ctx context.Context, a services.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by Middleware
func ActorFrom(ctx context.Context) (services.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(services.Actor)
	return a, ok
}
