package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "printhub/pkg/errors"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Validator wraps go-playground/validator with the custom tags shared by
// every printhub model.
type Validator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func New(log *logger.Logger) *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"hhmm":        validateHHMM,
		"slot_date":   validateSlotDate,
		"job_status":  validateJobStatus,
		"day_of_week": validateDayOfWeek,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	return &Validator{
		validate: v,
		logger:   log,
	}
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.TimeLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateSlotDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateJobStatus(fl validator.FieldLevel) bool {
	return model.JobStatus(fl.Field().String()).Valid()
}

func validateDayOfWeek(fl validator.FieldLevel) bool {
	day := model.DayOfWeek(strings.ToLower(fl.Field().String()))
	for _, d := range model.Week {
		if d == day {
			return true
		}
	}
	return false
}

// Struct validates s and returns ValidationErrors on failure.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt", "gte":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid id", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "hhmm":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", err.Field())
		case "slot_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "job_status":
			message = fmt.Sprintf("%s must be one of [pending queued printing completed cancelled]", err.Field())
		case "day_of_week":
			message = fmt.Sprintf("%s must be a weekday name (monday-sunday)", err.Field())
		}

		out = append(out, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return out
}

// ToAppError converts ValidationErrors into a 422 AppError and passes other
// errors through.
func ToAppError(err error) error {
	var validationErrs ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]any, len(validationErrs))
		for _, e := range validationErrs {
			fields[e.Field] = e.Message
		}
		return apperrors.Validation("Validation failed", fields)
	}
	return err
}
