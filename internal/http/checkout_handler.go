package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/fjod/go_cellar/internal/checkout"
	"github.com/fjod/go_cellar/internal/domain"
	"github.com/fjod/go_cellar/internal/order"
	"github.com/fjod/go_cellar/internal/session"
	log "github.com/sirupsen/logrus"
)

// SuccessPath is where a placed order is confirmed.
const SuccessPath = "/checkout/success"

type CheckoutHandler struct{}

func NewCheckoutHandler() *CheckoutHandler {
	return &CheckoutHandler{}
}

// GET /checkout
func (h *CheckoutHandler) Page(w http.ResponseWriter, r *http.Request, s *session.Session) {
	snap := s.Cart.Snapshot()
	if snap.IsEmpty() && !s.Checkout.State().IsBusy() {
		redirectHome(w, r)
		return
	}

	errs := s.Checkout.Errors()
	first, _ := errs.First()
	respondJSON(w, http.StatusOK, CheckoutPageResponse{
		State:      s.Checkout.State().String(),
		Form:       s.Checkout.Draft(),
		Errors:     fieldErrorsDTO(errs),
		FirstError: string(first),
		Cart:       cartDTO(snap),
	})
}

// PATCH /checkout/form
func (h *CheckoutHandler) UpdateForm(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	patch := make(map[domain.Field]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			patch[domain.Field(k)] = val
		case bool:
			patch[domain.Field(k)] = strconv.FormatBool(val)
		default:
			respondError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("field %q must be a string or boolean", k))
			return
		}
	}

	if err := s.Checkout.UpdateDraft(patch); err != nil {
		handleError(w, err)
		return
	}

	errs := s.Checkout.Errors()
	first, _ := errs.First()
	respondJSON(w, http.StatusOK, CheckoutPageResponse{
		State:      s.Checkout.State().String(),
		Form:       s.Checkout.Draft(),
		Errors:     fieldErrorsDTO(errs),
		FirstError: string(first),
		Cart:       cartDTO(s.Cart.Snapshot()),
	})
}

// Submit places the order. The body may carry the complete form or override fields of the
// current draft; an empty body submits the draft as is.
// POST /checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request, s *session.Session) {
	form := s.Checkout.Draft()
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	record, err := s.Checkout.Submit(r.Context(), form)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			respondValidation(w, verr)
		case errors.Is(err, checkout.ErrEmptyCart):
			redirectHome(w, r)
		default:
			handleError(w, err)
		}
		return
	}

	log.WithFields(log.Fields{
		"order_id":   record.OrderID,
		"request_id": getRequestID(r.Context()),
	}).Info("order placed")

	w.Header().Set("Location", SuccessPath)
	respondJSON(w, http.StatusCreated, orderDTO(record))
}

// Success shows the most recent order. Without one the visitor goes back to the catalog.
// GET /checkout/success
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request, s *session.Session) {
	record, err := s.Orders.Last(r.Context())
	if errors.Is(err, order.ErrNoOrder) {
		redirectHome(w, r)
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orderDTO(record))
}
