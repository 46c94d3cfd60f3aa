package customvalidator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	UID       string `validate:"omitempty,university_id"`
	Errors    string `validate:"omitempty,errors_mode"`
	Privilege string `validate:"omitempty,privilege"`
}

func TestCustomValidations(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))

	tests := []struct {
		name  string
		input sample
		ok    bool
	}{
		{"empty", sample{}, true},
		{"valid uid", sample{UID: "123456789"}, true},
		{"short uid", sample{UID: "12345678"}, false},
		{"letters in uid", sample{UID: "12345678a"}, false},
		{"errors-only", sample{Errors: "errors-only"}, true},
		{"no-errors", sample{Errors: "no-errors"}, true},
		{"bad errors mode", sample{Errors: "some"}, false},
		{"staff", sample{Privilege: "STAFF"}, true},
		{"legacy role", sample{Privilege: "ADMIN"}, false},
		{"lowercase role", sample{Privilege: "maker"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
