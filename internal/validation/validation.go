// Package validation enforces the field-level rules of students, grades
// and users before anything reaches the store.
//
// The rules themselves live in the validate:"..." struct tags on the
// types in internal/types; this package owns the single validator
// instance, registers the custom tags those structs use, and turns the
// validator's output into one actionable domain error.
package validation

import (
	"database/sql/driver"
	"errors"
	"reflect"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/Gun2717/StudentManagement/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)
)

// A *validator.Validate caches struct metadata and is safe for
// concurrent use, so one instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// "notblank" is shipped by the validator module but not registered
	// by default: it rejects "", "   " and friends, unlike "required".
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "studentemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "studentphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	// Date implements driver.Valuer and reports nil when unset, so
	// "required" on a Date means "a date was given".
	v.RegisterCustomTypeFunc(valuer, types.Date{})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("validation: register " + tag + ": " + err.Error())
	}
}

func valuer(field reflect.Value) any {
	if dv, ok := field.Interface().(driver.Valuer); ok {
		val, err := dv.Value()
		if err == nil {
			return val
		}
	}
	return nil
}

// rule is one check: the struct field it guards, the message shown when
// it fails, and its rank in the reporting order.
type rule struct {
	field   string
	message string
}

// studentRules is ordered: when several fields are wrong at once, the
// earliest rule in this list is the one reported.
var studentRules = []rule{
	{"ID", "student id must not be blank"},
	{"FullName", "full name must not be blank"},
	{"DateOfBirth", "date of birth is required"},
	{"GPA", "gpa must be between 0.0 and 4.0"},
	{"Email", "invalid email address"},
	{"Phone", "phone number must have 10-11 digits"},
}

var gradeRules = []rule{
	{"StudentID", "student id must not be blank"},
	{"CourseCode", "course code must not be blank"},
	{"Credits", "credits must be greater than 0"},
	{"MidtermScore", "midterm score must be between 0 and 10"},
	{"FinalScore", "final score must be between 0 and 10"},
	{"PracticeScore", "practice score must be between 0 and 10"},
}

var userRules = []rule{
	{"Username", "username must not be blank"},
	{"Email", "invalid email address"},
	{"Role", "role must be one of admin, teacher, student"},
}

// ValidateStudent checks every field of s. It returns nil when s may be
// stored, or a *types.DomainError of kind types.ErrValidation carrying
// the first failing check in the order id, name, date of birth, gpa,
// email, phone.
func ValidateStudent(s types.Student) error {
	return check("ValidateStudent", s, studentRules)
}

// ValidateGrade checks the caller-supplied fields of g. The derived total
// and letter are not inspected: they are recomputed on save anyway.
func ValidateGrade(g types.Grade) error {
	return check("ValidateGrade", g, gradeRules)
}

// ValidateUser checks the account fields of u (not its password).
func ValidateUser(u types.User) error {
	return check("ValidateUser", u, userRules)
}

func check(op string, v any, rules []rule) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: a programming error, not bad input.
		return err
	}

	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.StructField()] = true
	}

	for _, r := range rules {
		if failed[r.field] {
			return types.NewDomainError(op, types.ErrValidation, "%s", r.message)
		}
	}

	// A tag without a rule entry: still a validation failure.
	fe := verrs[0]
	return types.NewDomainError(op, types.ErrValidation, "field %s is invalid", fe.Field())
}

// MinPasswordLength is the shortest password Register and ChangePassword
// accept.
const MinPasswordLength = 6

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// ValidatePassword checks a plain-text password before it is hashed.
func ValidatePassword(password string) error {
	if err := validate.Var(password, "notblank"); err != nil {
		return types.NewDomainError("ValidatePassword", types.ErrValidation, "password must not be blank")
	}
	if err := validate.Var(password, "min="+strconv.Itoa(MinPasswordLength)); err != nil {
		return types.NewDomainError("ValidatePassword", types.ErrValidation,
			"password must be at least %d characters", MinPasswordLength)
	}
	// bcrypt counts bytes, not characters.
	if len(password) > MaxPasswordBytes {
		return types.NewDomainError("ValidatePassword", types.ErrValidation,
			"password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}
