package handlers

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/csvimport"
	"github.com/go-playground/validator/v10"
)

var contentKeyPattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// validate checks the admin and sign-up forms. Field names in errors are the
// form field names, taken from the `form` tag.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, err := csvimport.ParsePrice(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		_, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil
	})
	v.RegisterValidation("contentkey", func(fl validator.FieldLevel) bool {
		return contentKeyPattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(popupDatesInOrder, popupForm{})
	return v
}

// formErrors runs the validator over form and maps each failing field to a
// message. messages is keyed by "field.tag" or by field alone.
func formErrors(form interface{}, messages map[string]string) map[string]string {
	errs, _ := checkForm(form, messages)
	return errs
}

// firstFormError returns the message for the first failing field in struct
// order, or "" when the form is valid.
func firstFormError(form interface{}, messages map[string]string) string {
	errs, order := checkForm(form, messages)
	if len(order) == 0 {
		return ""
	}
	return errs[order[0]]
}

func checkForm(form interface{}, messages map[string]string) (map[string]string, []string) {
	errs := make(map[string]string)
	err := validate.Struct(form)
	if err == nil {
		return errs, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["form"] = err.Error()
		return errs, []string{"form"}
	}
	var order []string
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg, ok = messages[field]
		}
		if !ok {
			msg = "Invalid value."
		}
		errs[field] = msg
		order = append(order, field)
	}
	return errs, order
}
