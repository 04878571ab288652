package store

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/franz/playtest-history/internal/actions"
	"github.com/franz/playtest-history/internal/util"
)

func newValidator(catalog *actions.Catalog) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("actiontype", func(fl validator.FieldLevel) bool {
		return catalog.Valid(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register actiontype validation: %v", err))
	}
	return v
}

// check validates a request struct and maps failures onto ErrValidation
func (s *Store) check(req interface{}) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return util.Validationf("%v", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "actiontype":
		return fmt.Errorf("%w: %q", util.ErrInvalidActionType, fe.Value())
	case "required":
		return util.Validationf("%s is required", fe.Field())
	case "nefield":
		return util.Validationf("%s must differ from %s", fe.Field(), fe.Param())
	case "gt":
		return util.Validationf("%s must be greater than %s", fe.Field(), fe.Param())
	case "datetime":
		return util.Validationf("%s %q is not a %s date", fe.Field(), fe.Value(), fe.Param())
	default:
		return util.Validationf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}
