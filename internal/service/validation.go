package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
	"github.com/noah-isme/fefu-courses/pkg/slug"
)

// Messages shown for specific field/rule pairs. Keys are "field.tag".
var fieldMessages = map[string]string{
	"username.min":             "Логин должен содержать минимум 3 символа",
	"password.min":             "Пароль должен содержать минимум 8 символов",
	"password.notnumeric":      "Пароль не должен состоять только из цифр",
	"password_confirm.eqfield": "Пароли не совпадают",
	"name.min":                 "Имя должно содержать минимум 2 символа",
	"message.min":              "Сообщение должно содержать минимум 10 символов",
	"duration.min":             "Продолжительность должна быть от 1 до 500 часов",
	"duration.max":             "Продолжительность должна быть от 1 до 500 часов",
	"max_students.min":         "Максимальное количество студентов должно быть не меньше 1",
	"price.gte":                "Цена не может быть отрицательной",
	"slug.slug":                "Допустимы только буквы, цифры и дефисы",
	"faculty.oneof":            "Выберите корректный факультет",
	"level.oneof":              "Выберите корректный уровень",
	"status.oneof":             "Недопустимый статус записи",
	"student_email.email":      "Введите правильный адрес электронной почты",
	"instructor_id.uuid":       "Преподаватель не найден",
	"student_id.uuid":          "Студент не найден",
	"course_id.uuid":           "Курс не найден",
}

// NewValidator returns a validator reporting form field names and carrying
// the custom rules used by the forms.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
	mustRegister(v, "notnumeric", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || strings.TrimLeft(value, "0123456789") != ""
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || slug.Valid(value)
	})
	return v
}

// mustRegister panics when a rule cannot be registered; forms relying on it
// would otherwise accept anything.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// validationError converts validator output into a field scoped application error.
func validationError(err error, message string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	appErr := appErrors.Validation(fields)
	appErr.Message = message
	appErr.Err = err
	return appErr
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "Обязательное поле"
	case "email":
		return "Введите правильный адрес электронной почты"
	case "max":
		return fmt.Sprintf("Убедитесь, что это значение содержит не более %s символов", fe.Param())
	case "min":
		return fmt.Sprintf("Убедитесь, что это значение содержит не менее %s символов", fe.Param())
	default:
		return "Некорректное значение"
	}
}

// fieldConflict builds a conflict error pinned to a single form field.
func fieldConflict(field, message string) error {
	return appErrors.FieldError(appErrors.ErrConflict, field, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
