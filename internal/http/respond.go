package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cellar/internal/cart"
	"github.com/fjod/go_cellar/internal/catalog"
	"github.com/fjod/go_cellar/internal/checkout"
	"github.com/fjod/go_cellar/internal/domain"
	"github.com/fjod/go_cellar/internal/session"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ValidationErrorResponse lists every invalid checkout field; FirstError is the one to bring into view.
type ValidationErrorResponse struct {
	Error      string            `json:"error"`
	Code       string            `json:"code"`
	Fields     map[string]string `json:"fields"`
	FirstError string            `json:"first_error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

func respondValidation(w http.ResponseWriter, verr *checkout.ValidationError) {
	respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
		Error:      "invalid checkout form",
		Code:       "validation_failed",
		Fields:     fieldErrorsDTO(verr.Fields),
		FirstError: string(verr.First()),
	})
}

// redirectHome sends the visitor back to the catalog. Missing carts and orders are not errors.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleError converts domain errors to HTTP status codes
func handleError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, catalog.ErrItemNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, cart.ErrOutOfStock):
		httpStatus = http.StatusConflict
		code = "out_of_stock"
	case errors.Is(err, cart.ErrFrozen):
		httpStatus = http.StatusConflict
		code = "checkout_in_progress"
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		httpStatus = http.StatusConflict
		code = "submission_in_progress"
	case errors.Is(err, domain.ErrUnknownField):
		httpStatus = http.StatusBadRequest
		code = "unknown_field"
	case errors.Is(err, checkout.ErrPaymentDeclined):
		httpStatus = http.StatusPaymentRequired
		code = "payment_declined"
	case errors.Is(err, checkout.ErrInventoryConflict):
		httpStatus = http.StatusConflict
		code = "inventory_conflict"
	case errors.Is(err, checkout.ErrProcessingTimeout):
		httpStatus = http.StatusServiceUnavailable
		code = "timeout"
	case errors.Is(err, checkout.ErrProcessorUnavailable):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
	case errors.Is(err, session.ErrInvalidID):
		httpStatus = http.StatusBadRequest
		code = "invalid_session"
	case errors.Is(err, session.ErrUnavailable):
		httpStatus = http.StatusServiceUnavailable
		code = "session_unavailable"
	default:
		log.WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
