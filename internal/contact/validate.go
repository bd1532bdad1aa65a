// Package contact validates and records contact form submissions.
package contact

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// EmailPattern is the address format accepted by the contact form.
const EmailPattern = "^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)*$"

var emailRe = regexp.MustCompile(EmailPattern)

// Validation rule tags.
const (
	RuleRequired   = "notblank"
	RuleEmail      = "portfolio_email"
	RuleTrimmedMin = "trimmed_min"
)

// Form is the contact form payload.
type Form struct {
	FullName string `json:"fullName" validate:"notblank,trimmed_min=2"`
	Email    string `json:"email" validate:"notblank,portfolio_email"`
	Message  string `json:"message" validate:"notblank,trimmed_min=10"`
}

// Normalized returns the form with surrounding whitespace removed.
func (f Form) Normalized() Form {
	return Form{
		FullName: strings.TrimSpace(f.FullName),
		Email:    strings.TrimSpace(f.Email),
		Message:  strings.TrimSpace(f.Message),
	}
}

// ValidationError lists failed fields. Fields maps the JSON field name to a
// human-readable message and Rules maps it to the failing rule tag.
type ValidationError struct {
	Fields map[string]string
	Rules  map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid contact form: " + strings.Join(parts, "; ")
}

// HasRule reports whether any field failed rule.
func (e *ValidationError) HasRule(rule string) bool {
	for _, r := range e.Rules {
		if r == rule {
			return true
		}
	}
	return false
}

// Field messages shown next to each input.
var fieldMessages = map[string]map[string]string{
	"fullName": {
		RuleRequired:   "Full name is required",
		RuleTrimmedMin: "Name must be at least 2 characters",
	},
	"email": {
		RuleRequired: "Email is required",
		RuleEmail:    "Please enter a valid email address",
	},
	"message": {
		RuleRequired:   "Message is required",
		RuleTrimmedMin: "Message must be at least 10 characters",
	},
}

// Validator checks contact forms.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the contact rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation(RuleRequired, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation(RuleEmail, func(fl validator.FieldLevel) bool {
		return emailRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation(RuleTrimmedMin, func(fl validator.FieldLevel) bool {
		minLen, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= minLen
	})

	return &Validator{validate: v}
}

// Validate returns nil or a *ValidationError with one message per failed field.
func (v *Validator) Validate(form Form) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("contact validation: %w", err)
	}

	out := &ValidationError{
		Fields: make(map[string]string, len(verrs)),
		Rules:  make(map[string]string, len(verrs)),
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		msg, ok := fieldMessages[field][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", field)
		}
		out.Fields[field] = msg
		out.Rules[field] = fe.Tag()
	}
	return out
}
