package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"statarb-go/internal/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report yaml keys rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every engine field against its allowed domain.
func (e Engine) Validate() error {
	return translate(validate.Struct(e))
}

// Validate checks the whole document, engine and pairs included.
func (c *Config) Validate() error {
	if c == nil {
		return errs.NewInvalidConfig("config", "nil")
	}
	return translate(validate.Struct(c))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	reason := "must satisfy " + fe.Tag()
	if fe.Param() != "" {
		reason += "=" + fe.Param()
	}
	return errs.NewInvalidConfig(field, fmt.Sprintf("%s (got %v)", reason, fe.Value()))
}
