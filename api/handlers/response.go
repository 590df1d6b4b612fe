package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/config"
	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func writeError(w http.ResponseWriter, status int, body models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps a service error onto its status and error body
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	var cerr *services.ConflictError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Code: "VALIDATION_ERROR", Details: verr.Messages})
	case errors.As(err, &cerr):
		writeError(w, http.StatusConflict, models.ErrorResponse{Error: cerr.Message, Code: cerr.Code})
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, models.ErrorResponse{Error: err.Error(), Code: "FORBIDDEN"})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials", Code: "INVALID_CREDENTIALS"})
	case errors.Is(err, services.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, models.ErrorResponse{Error: "too many failed login attempts, try again later", Code: "TOO_MANY_ATTEMPTS"})
	case errors.Is(err, context.DeadlineExceeded):
		zap.S().Warnw("request timed out", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusRequestTimeout, models.ErrorResponse{Error: "Request timeout", Code: "TIMEOUT"})
	default:
		zap.S().Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return false
	}
	return true
}

// pathID parses the ObjectID route variable name
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + name, Code: "VALIDATION_ERROR"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryID(r *http.Request, name string) *primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(r.URL.Query().Get(name))
	if err != nil {
		return nil
	}
	return &id
}

func actor(r *http.Request) services.Actor {
	a, _ := api.ActorFrom(r.Context())
	return a
}

func getPage(r *http.Request) databases.Paginate {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))
	return databases.NewPaginate(limit, page)
}
