package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Auth exposes login, sign up and password recovery
type Auth struct {
	Svc *services.AuthService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// clientIP prefers the first X-Forwarded-For hop set by the router in front of the dyno
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginHandler exchanges credentials of the {role} account for a bearer token
func (a Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	role := mux.Vars(r)["role"]
	res, err := a.Svc.Login(ctx, role, body.Email, body.Password, clientIP(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	zap.S().Infow("user logged in", "userId", res.UserID, "role", role)
	writeJSON(w, http.StatusOK, res)
}

// RegisterAttorneyHandler signs up an attorney
func (a Auth) RegisterAttorneyHandler(w http.ResponseWriter, r *http.Request) {
	var in services.AttorneyRegistration
	if !decode(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	created, err := a.Svc.RegisterAttorney(ctx, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// RegisterJurorHandler signs up a juror
func (a Auth) RegisterJurorHandler(w http.ResponseWriter, r *http.Request) {
	var in services.JurorRegistration
	if !decode(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	created, err := a.Svc.RegisterJuror(ctx, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ForgotPasswordHandler mails a reset link. The answer is the same whether or not the email exists.
func (a Auth) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var body forgotPasswordRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.Svc.RequestPasswordReset(ctx, mux.Vars(r)["role"], body.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "If the account exists a reset link has been sent"})
}

// ResetPasswordHandler spends a reset token
func (a Auth) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var body resetPasswordRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.Svc.ResetPassword(ctx, body.Token, body.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
