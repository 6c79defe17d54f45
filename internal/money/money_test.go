package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0":        "0,00\u00a0€",
		"9.9":      "9,90\u00a0€",
		"89":       "89,00\u00a0€",
		"145":      "145,00\u00a0€",
		"1234.5":   "1.234,50\u00a0€",
		"1234567":  "1.234.567,00\u00a0€",
		"10.005":   "10,01\u00a0€",
		"-12.3":    "-12,30\u00a0€",
		"-0.001":   "0,00\u00a0€",
		"999.999":  "1.000,00\u00a0€",
		"100.0049": "100,00\u00a0€",
	}

	for in, want := range cases {
		assert.Equal(t, want, Format(decimal.RequireFromString(in)), in)
	}
}
