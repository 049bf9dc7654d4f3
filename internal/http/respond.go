package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/go_shop/internal/apperr"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// HandlerConfig is shared by every handler.
type HandlerConfig struct {
	Timeout time.Duration
	// Dev adds the cause chain and stack traces to error bodies.
	Dev bool
	Log zerolog.Logger
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

type successResponse struct {
	Status  string      `json:"status"`
	Results *int        `json:"results,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type responder struct {
	cfg HandlerConfig
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, successResponse{Status: "success", Data: data})
}

func respondList(w http.ResponseWriter, n int, data interface{}) {
	respondJSON(w, http.StatusOK, successResponse{Status: "success", Results: &n, Data: data})
}

// respondError renders err as {"status":"fail"} for 4xx and
// {"status":"error"} for 5xx.
func (rs responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.As(err)

	body := ErrorResponse{
		Status:  "fail",
		Message: appErr.Message,
		Code:    string(appErr.Kind),
	}
	if !appErr.IsClient() {
		body.Status = "error"
		rs.cfg.Log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("kind", string(appErr.Kind)).
			Msg(appErr.Message)
	}
	if rs.cfg.Dev && appErr.Err != nil {
		body.Details = appErr.Err.Error()
		if appErr.Kind == apperr.KindInternal {
			body.Stack = fmt.Sprintf("%+v", appErr.Err)
		}
	}

	respondJSON(w, appErr.Status, body)
}

func (rs responder) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	rs.respondError(w, r, apperr.Validation(msg))
}

// decodeJSON rejects unknown fields so typos surface as 400s.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body", err)
	}
	return nil
}
