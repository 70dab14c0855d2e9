package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lower", input: "alice", want: "Alice"},
		{name: "mixed case", input: "aLICE", want: "Alice"},
		{name: "surrounding and inner spaces", input: "  bob   marley ", want: "Bob Marley"},
		{name: "decomposed accent", input: "josé", want: "José"},
		{name: "blank", input: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.input))
		})
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Hi", CleanString("  Hi \n"))
	assert.Equal(t, "hi", CleanString("  Hi \n", true))
}

func TestFieldErrors(t *testing.T) {
	type pinForm struct {
		PIN  string `json:"pin" validate:"pin"`
		Name string `json:"name" validate:"notblank"`
	}

	err := Validate.Struct(pinForm{PIN: "12a4", Name: "  "})
	fields, ok := FieldErrors(errors.Wrap(err, "validating"))
	assert.True(t, ok)
	assert.Equal(t, map[string]string{
		"pin":  "PIN must be exactly 4 digits",
		"name": "this field cannot be blank",
	}, fields)

	assert.NoError(t, Validate.Struct(pinForm{PIN: "0042", Name: "Class"}))

	fields, ok = FieldErrors(NewValidationError(nil, FieldError{Field: "roll", Error: "out of range"}))
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"roll": "out of range"}, fields)

	_, ok = FieldErrors(errors.New("boom"))
	assert.False(t, ok)
}
