package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const MinPasswordLength = 8

var errPasswordTooLong = errors.New("must be no more than 72 bytes")

func maxBytes(value any) error {
	s, _ := value.(string)
	if len(s) > auth.MaxPasswordLength {
		return errPasswordTooLong
	}
	return nil
}

type credentials struct {
	Email    string
	Password string
}

func validateCredentials(email, password string) error {
	c := credentials{Email: email, Password: password}
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(MinPasswordLength, 0), validation.By(maxBytes)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}
