package checkout

import (
	"testing"

	"github.com/fjod/go_cellar/internal/domain"
	"github.com/stretchr/testify/assert"
)

func validForm() domain.CheckoutForm {
	f := domain.NewCheckoutForm()
	f.FirstName = "Giulia"
	f.LastName = "Rossi"
	f.Email = "giulia.rossi@example.it"
	f.Phone = "+39 333 123 4567"
	f.Address = "Via Roma 1"
	f.City = "Torino"
	f.Province = "TO"
	f.ZipCode = "10121"
	f.AcceptTerms = true
	return f
}

func TestValidate_ValidForm(t *testing.T) {
	assert.True(t, Validate(validForm()).Valid())
}

func TestValidate_AllEmptyReturnsNineErrors(t *testing.T) {
	errs := Validate(domain.CheckoutForm{})

	assert.Equal(t, domain.FieldErrors{
		domain.FieldFirstName:   MsgFirstNameRequired,
		domain.FieldLastName:    MsgLastNameRequired,
		domain.FieldEmail:       MsgEmailRequired,
		domain.FieldPhone:       MsgPhoneRequired,
		domain.FieldAddress:     MsgAddressRequired,
		domain.FieldCity:        MsgCityRequired,
		domain.FieldProvince:    MsgProvinceRequired,
		domain.FieldZipCode:     MsgZipRequired,
		domain.FieldAcceptTerms: MsgTermsRequired,
	}, errs)
}

func TestValidate_WhitespaceOnlyIsEmpty(t *testing.T) {
	f := validForm()
	f.FirstName = "   "
	f.City = "\t"

	errs := Validate(f)

	assert.Len(t, errs, 2)
	assert.Equal(t, MsgFirstNameRequired, errs[domain.FieldFirstName])
	assert.Equal(t, MsgCityRequired, errs[domain.FieldCity])
}

func TestValidate_TermsAlwaysChecked(t *testing.T) {
	f := validForm()
	f.AcceptTerms = false

	errs := Validate(f)

	assert.Equal(t, domain.FieldErrors{domain.FieldAcceptTerms: MsgTermsRequired}, errs)
}

func TestValidate_BadEmailOnly(t *testing.T) {
	f := validForm()
	f.Email = "not-an-email"

	errs := Validate(f)

	assert.Equal(t, domain.FieldErrors{domain.FieldEmail: MsgEmailInvalid}, errs)
}

func TestValidate_Email(t *testing.T) {
	tests := map[string]bool{
		"a@b.co":              true,
		"mario.rossi@vino.it": true,
		"a@b":                 false,
		"a b@c.it":            false,
		"@c.it":               false,
		"a@.it":               false,
		"a@@b.it":             false,
		" a@b.it":             false,
	}

	for email, ok := range tests {
		t.Run(email, func(t *testing.T) {
			f := validForm()
			f.Email = email
			_, bad := Validate(f)[domain.FieldEmail]
			assert.Equal(t, ok, !bad)
		})
	}
}

func TestValidate_Phone(t *testing.T) {
	tests := map[string]bool{
		"3331234567":      true,
		"+39 (0)11-1234":  true,
		"1234567":         false,
		"12345678":        true,
		"333-ABC-4567":    false,
		"+39 333 1234567": true,
	}

	for phone, ok := range tests {
		t.Run(phone, func(t *testing.T) {
			f := validForm()
			f.Phone = phone
			msg, bad := Validate(f)[domain.FieldPhone]
			assert.Equal(t, ok, !bad)
			if bad {
				assert.Equal(t, MsgPhoneInvalid, msg)
			}
		})
	}
}

func TestValidate_ZipCode(t *testing.T) {
	tests := map[string]string{
		"00100":  "",
		"1012":   MsgZipInvalid,
		"101210": MsgZipInvalid,
		"1012a":  MsgZipInvalid,
		"":       MsgZipRequired,
		"  ":     MsgZipRequired,
	}

	for zip, want := range tests {
		t.Run(zip, func(t *testing.T) {
			f := validForm()
			f.ZipCode = zip
			assert.Equal(t, want, Validate(f)[domain.FieldZipCode])
		})
	}
}

func TestValidate_CountryAndNotesIgnored(t *testing.T) {
	f := validForm()
	f.Country = ""
	f.Notes = "lasciare al portiere"

	assert.True(t, Validate(f).Valid())
}
