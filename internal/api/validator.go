package api

import (
	"fmt"
	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/pricelist/internal/pkg/constants"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), constants.ErrBadRequest)
	}
	return nil
}

// Binder binds like echo.DefaultBinder and validates the result.
type Binder struct {
	echo.DefaultBinder
}

func NewBinder() *Binder {
	return &Binder{}
}

func (b *Binder) Bind(i any, c echo.Context) error {
	if err := b.DefaultBinder.Bind(i, c); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), constants.ErrBadRequest)
	}
	return c.Validate(i)
}

// JSONSerializer encodes and decodes bodies with sonic.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigDefault.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (JSONSerializer) Deserialize(c echo.Context, i any) error {
	if err := sonic.ConfigDefault.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
