package checkout

import (
	"regexp"
	"strings"

	"github.com/fjod/go_cellar/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s+\-()]{8,}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}$`)
)

const (
	MsgFirstNameRequired = "Nome richiesto"
	MsgLastNameRequired  = "Cognome richiesto"
	MsgEmailRequired     = "Email richiesta"
	MsgEmailInvalid      = "Email non valida"
	MsgPhoneRequired     = "Telefono richiesto"
	MsgPhoneInvalid      = "Numero di telefono non valido"
	MsgAddressRequired   = "Indirizzo richiesto"
	MsgCityRequired      = "Città richiesta"
	MsgProvinceRequired  = "Provincia richiesta"
	MsgZipRequired       = "CAP richiesto"
	MsgZipInvalid        = "CAP non valido (5 cifre)"
	MsgTermsRequired     = "Devi accettare i termini per procedere"
)

// Validate checks every field independently and returns all failures at once.
// Country and notes are never checked. An empty result means the form is valid.
func Validate(form domain.CheckoutForm) domain.FieldErrors {
	errs := domain.FieldErrors{}

	required(errs, domain.FieldFirstName, form.FirstName, MsgFirstNameRequired)
	required(errs, domain.FieldLastName, form.LastName, MsgLastNameRequired)
	matching(errs, domain.FieldEmail, form.Email, emailPattern, MsgEmailRequired, MsgEmailInvalid)
	matching(errs, domain.FieldPhone, form.Phone, phonePattern, MsgPhoneRequired, MsgPhoneInvalid)
	required(errs, domain.FieldAddress, form.Address, MsgAddressRequired)
	required(errs, domain.FieldCity, form.City, MsgCityRequired)
	required(errs, domain.FieldProvince, form.Province, MsgProvinceRequired)
	matching(errs, domain.FieldZipCode, form.ZipCode, zipPattern, MsgZipRequired, MsgZipInvalid)

	if !form.AcceptTerms {
		errs[domain.FieldAcceptTerms] = MsgTermsRequired
	}
	return errs
}

func required(errs domain.FieldErrors, field domain.Field, value, msg string) bool {
	if strings.TrimSpace(value) == "" {
		errs[field] = msg
		return false
	}
	return true
}

// matching tests the untrimmed value, so surrounding whitespace makes an email or CAP invalid.
func matching(errs domain.FieldErrors, field domain.Field, value string, pattern *regexp.Regexp, missing, invalid string) {
	if !required(errs, field, value, missing) {
		return
	}
	if !pattern.MatchString(value) {
		errs[field] = invalid
	}
}
