package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/soaringjerry/Raay/internal/builder"
	"github.com/soaringjerry/Raay/internal/middleware"
	"github.com/soaringjerry/Raay/internal/services"
	"github.com/soaringjerry/Raay/internal/utils"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, fragment string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, fragment)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (rt *Router) badRequest(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusBadRequest, "bad_request", utils.T(middleware.LocaleFromContext(r.Context()), "error.bad_request"))
}

// writeBuilderError maps a non-recoverable builder error onto a response. Validation
// messages are shown in the request locale.
func (rt *Router) writeBuilderError(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	if ve, ok := builder.AsValidationError(err); ok {
		rt.metrics.RecordValidationRejection(ve.Code)
		writeError(w, http.StatusUnprocessableEntity, ve.Code, ve.Message.In(locale))
		return
	}
	switch {
	case errors.Is(err, builder.ErrUnknownType):
		writeError(w, http.StatusBadRequest, "unknown_type", utils.T(locale, "error.unknown_type"))
	case errors.Is(err, builder.ErrUnsupportedEdit):
		writeError(w, http.StatusBadRequest, "unsupported_edit", err.Error())
	default:
		rt.log.Error("builder operation failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// writeServiceError maps service-layer errors. Validation errors from the envelope go
// through writeBuilderError.
func (rt *Router) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if _, ok := builder.AsValidationError(err); ok {
		rt.writeBuilderError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	se, ok := services.AsServiceError(err)
	if !ok {
		rt.log.Error("service call failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	switch se.Code {
	case services.ErrorInvalid:
		writeError(w, http.StatusBadRequest, string(se.Code), se.Message)
	case services.ErrorUnauthorized:
		writeError(w, http.StatusUnauthorized, string(se.Code), se.Message)
	case services.ErrorForbidden:
		writeError(w, http.StatusForbidden, string(se.Code), utils.T(locale, "error.forbidden"))
	case services.ErrorNotFound:
		writeError(w, http.StatusNotFound, string(se.Code), utils.T(locale, "error.not_found"))
	case services.ErrorConflict:
		writeError(w, http.StatusConflict, string(se.Code), se.Message)
	case services.ErrorBadGateway:
		rt.log.Warn("survey store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:     string(se.Code),
			Message:   utils.T(locale, "save.retry"),
			Retryable: se.Retryable(),
		})
	default:
		writeError(w, http.StatusInternalServerError, string(se.Code), se.Message)
	}
}
