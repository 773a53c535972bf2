// Package contact handles submissions of the portfolio contact form.
package contact

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Form is the JSON body posted by the contact page. Website is a honeypot
// that real visitors never see.
type Form struct {
	Name         string `json:"name" validate:"required,min=2,max=100,personname"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Message      string `json:"message" validate:"required,min=10,max=2000"`
	SendCopy     bool   `json:"sendCopy"`
	Website      string `json:"website,omitempty"`
	CaptchaToken string `json:"captchaToken,omitempty"`
}

var personNameRx = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid form data: " + strings.Join(parts, "; ")
}

var fieldMessages = map[string]map[string]string{
	"name": {
		"required":   "Name must be at least 2 characters",
		"min":        "Name must be at least 2 characters",
		"max":        "Name must be less than 100 characters",
		"personname": "Name can only contain letters, spaces, hyphens, and apostrophes",
	},
	"email": {
		"required": "Please enter a valid email address",
		"email":    "Please enter a valid email address",
		"max":      "Email must be less than 255 characters",
	},
	"message": {
		"required": "Message must be at least 10 characters",
		"min":      "Message must be at least 10 characters",
		"max":      "Message must be less than 2000 characters",
	},
}

type Validator struct {
	v *validator.Validate
}

func NewValidator() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	err := v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRx.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, errors.Wrap(err, "register personname validation")
	}
	return &Validator{v: v}, nil
}

// Check returns a *ValidationError listing every failing field, or nil.
func (v *Validator) Check(f Form) error {
	err := v.v.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate contact form")
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		msg := fieldMessages[fe.Field()][fe.Tag()]
		if msg == "" {
			msg = "Invalid value"
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
