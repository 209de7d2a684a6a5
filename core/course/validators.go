package course

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// InitValidators registers course-specific validation tags.
func InitValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("timeofday", timeOfDayValidation)
}

// timeOfDayValidation checks a "HH:MM" 24h clock value.
func timeOfDayValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}
