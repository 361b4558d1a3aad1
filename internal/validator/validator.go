package validator

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/go-playground/validator/v10"
)

var partIDPattern = regexp.MustCompile(`^[A-Za-z]+[0-9]+-.+$`)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// Validator wraps the struct validator with the service's custom rules registered.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates s and returns ValidationErrors describing every failed field.
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("exam_type", validateExamType)
	validate.RegisterValidation("part_id", validatePartID)
	validate.RegisterValidation("password", validatePassword)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateUsername requires at least one letter and one digit. Length and charset are
// checked by the min, max and alphanum tags.
func validateUsername(fl validator.FieldLevel) bool {
	var hasLetter, hasDigit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func validateExamType(fl validator.FieldLevel) bool {
	return models.ExamType(fl.Field().String()).IsValid()
}

func validatePartID(fl validator.FieldLevel) bool {
	return partIDPattern.MatchString(fl.Field().String())
}

func validatePassword(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxPasswordBytes
}
