package journal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when no entry matches a (user, id) pair.
	ErrNotFound = errors.New("journal entry not found")

	// ErrValidation is returned when caller-supplied fields break a constraint.
	ErrValidation = errors.New("validation error")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks required texts, moods, score ranges and the date format.
func (f Fields) Validate() error {
	if err := validateStruct(f); err != nil {
		return err
	}
	for _, p := range Periods {
		if strings.TrimSpace(f.Period(p).Text) == "" {
			return fmt.Errorf("%w: %s must not be blank", ErrValidation, p)
		}
	}
	return nil
}

// Validate checks the values the patch would set.
func (p Patch) Validate() error {
	return validateStruct(p)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
