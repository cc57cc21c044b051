package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-otp-signup/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"omitempty,len=6,numeric"`
}

func TestStruct_Valid(t *testing.T) {
	require.NoError(t, Struct(sample{Name: "Ann", Email: "a@x.com", OTP: "123456"}))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Name: "A", Email: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var ve *Error
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 2)
	assert.Equal(t, FieldError{Field: "name", Message: "must be at least 2 characters"}, ve.Fields[0])
	assert.Equal(t, FieldError{Field: "email", Message: "must be a valid email address"}, ve.Fields[1])
}

func TestStruct_OTPRules(t *testing.T) {
	err := Struct(sample{Name: "Ann", Email: "a@x.com", OTP: "12a456"})
	var ve *Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "otp", ve.Fields[0].Field)
	assert.Equal(t, "must be numeric", ve.Fields[0].Message)
}

func TestStruct_MaxBytesCountsEncodedLength(t *testing.T) {
	type secret struct {
		Password string `json:"password" validate:"required,max=64,maxbytes=72"`
	}

	require.NoError(t, Struct(secret{Password: strings.Repeat("a", 64)}))
	require.NoError(t, Struct(secret{Password: strings.Repeat("é", 36)}))

	// 40 runes pass max=64 but encode to 80 bytes.
	err := Struct(secret{Password: strings.Repeat("é", 40)})
	var ve *Error
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, FieldError{Field: "password", Message: "must be at most 72 bytes"}, ve.Fields[0])
}
