package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "simple valid", input: "a@b.co", want: true},
		{name: "full address", input: "first.last+tag@sub.example.com", want: true},
		{name: "percent and underscore", input: "user_%x@example.org", want: true},
		{name: "not an email", input: "not-an-email", want: false},
		{name: "empty", input: "", want: false},
		{name: "missing local part", input: "@example.com", want: false},
		{name: "missing domain", input: "user@", want: false},
		{name: "single letter tld", input: "user@example.c", want: false},
		{name: "numeric tld", input: "user@example.12", want: false},
		{name: "space inside", input: "us er@example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.input))
		})
	}
}

func TestProcurementCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "eight digits", input: "12345678", want: true},
		{name: "leading zeros", input: "00000001", want: true},
		{name: "seven digits", input: "1234567", want: false},
		{name: "nine digits", input: "123456789", want: false},
		{name: "trailing letter", input: "1234567a", want: false},
		{name: "empty", input: "", want: false},
		{name: "unicode digits", input: "１２３４５６７８", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProcurementCode(tt.input))
		})
	}
}

func TestCountryCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "uppercase", input: "DE", want: true},
		{name: "another uppercase", input: "US", want: true},
		{name: "lowercase rejected", input: "de", want: false},
		{name: "mixed case rejected", input: "De", want: false},
		{name: "three letters", input: "DEU", want: false},
		{name: "one letter", input: "D", want: false},
		{name: "digits", input: "12", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountryCode(tt.input))
		})
	}
}
