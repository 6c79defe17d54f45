package domain

import (
	"errors"
	"strconv"
)

const DefaultCountry = "Italia"

var ErrUnknownField = errors.New("unknown checkout field")

type Field string

const (
	FieldFirstName   Field = "firstName"
	FieldLastName    Field = "lastName"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldAddress     Field = "address"
	FieldCity        Field = "city"
	FieldProvince    Field = "province"
	FieldZipCode     Field = "zipCode"
	FieldCountry     Field = "country"
	FieldNotes       Field = "notes"
	FieldAcceptTerms Field = "acceptTerms"
)

// FormFields lists the checkout fields in the order they appear on the form.
var FormFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldAddress,
	FieldCity,
	FieldProvince,
	FieldZipCode,
	FieldCountry,
	FieldNotes,
	FieldAcceptTerms,
}

type CheckoutForm struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Province    string `json:"province"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`
	Notes       string `json:"notes"`
	AcceptTerms bool   `json:"acceptTerms"`
}

func NewCheckoutForm() CheckoutForm {
	return CheckoutForm{Country: DefaultCountry}
}

// Set assigns a single field from its textual value. acceptTerms accepts anything strconv.ParseBool does.
func (f *CheckoutForm) Set(field Field, value string) error {
	switch field {
	case FieldFirstName:
		f.FirstName = value
	case FieldLastName:
		f.LastName = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldAddress:
		f.Address = value
	case FieldCity:
		f.City = value
	case FieldProvince:
		f.Province = value
	case FieldZipCode:
		f.ZipCode = value
	case FieldCountry:
		f.Country = value
	case FieldNotes:
		f.Notes = value
	case FieldAcceptTerms:
		accepted, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		f.AcceptTerms = accepted
	default:
		return ErrUnknownField
	}
	return nil
}

// FieldErrors maps a form field to its message. A missing key means the field is valid.
type FieldErrors map[Field]string

func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// First returns the first invalid field in form order.
func (e FieldErrors) First() (Field, bool) {
	for _, f := range FormFields {
		if _, ok := e[f]; ok {
			return f, true
		}
	}
	return "", false
}

func (e FieldErrors) Clear(field Field) {
	delete(e, field)
}
