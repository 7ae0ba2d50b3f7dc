package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required,min=8"`
	Gender   string `validate:"omitempty,oneof=male female"`
}

func TestFormatValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      loginInput
		wantErr bool
		field   string
		msg     string
	}{
		{name: "valid", in: loginInput{Email: "a", Password: "12345678"}},
		{name: "missing email", in: loginInput{Password: "12345678"}, wantErr: true, field: "email", msg: "email is required"},
		{name: "short password", in: loginInput{Email: "a", Password: "1"}, wantErr: true, field: "password", msg: "password must be at least 8 characters long"},
		{name: "bad gender", in: loginInput{Email: "a", Password: "12345678", Gender: "x"}, wantErr: true, field: "gender", msg: "gender must be one of [male female]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.in)
			if !tt.wantErr {
				assert.NoError(t, err)
				assert.Nil(t, FormatValidationErrors(err))
				return
			}
			require.Error(t, err)
			errs := FormatValidationErrors(err)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.msg, errs[0].Message)
			assert.Equal(t, tt.msg, FirstValidationMessage(err))
		})
	}
}
