// Package form validates the registration inputs.
package form

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field identifies one registration input.
type Field string

const (
	FieldNone       Field = ""
	FieldUserID     Field = "user_id"
	FieldName       Field = "name"
	FieldDepartment Field = "department"
)

// Order is the order fields are presented and validated in.
var Order = []Field{FieldUserID, FieldName, FieldDepartment}

// Label is the prompt shown for a field.
func (f Field) Label() string {
	switch f {
	case FieldUserID:
		return "ID"
	case FieldName:
		return "Name"
	case FieldDepartment:
		return "Department"
	}
	return string(f)
}

// Fields holds the registration inputs. Struct field order is validation order.
type Fields struct {
	UserID     string `validate:"required"`
	Name       string `validate:"required"`
	Department string `validate:"required"`
}

// Get returns the current value of f.
func (fs *Fields) Get(f Field) string {
	switch f {
	case FieldUserID:
		return fs.UserID
	case FieldName:
		return fs.Name
	case FieldDepartment:
		return fs.Department
	}
	return ""
}

// Set assigns the value of f.
func (fs *Fields) Set(f Field, v string) {
	switch f {
	case FieldUserID:
		fs.UserID = v
	case FieldName:
		fs.Name = v
	case FieldDepartment:
		fs.Department = v
	}
}

// Trimmed returns a copy with surrounding whitespace removed.
func (fs Fields) Trimmed() Fields {
	return Fields{
		UserID:     strings.TrimSpace(fs.UserID),
		Name:       strings.TrimSpace(fs.Name),
		Department: strings.TrimSpace(fs.Department),
	}
}

// Clear empties every input.
func (fs *Fields) Clear() {
	*fs = Fields{}
}

// Error reports the first missing field and the field to focus.
type Error struct {
	Field   Field
	Message string
}

func (e *Error) Error() string { return e.Message }

var messages = map[Field]string{
	FieldUserID:     "Please enter your ID first.",
	FieldName:       "Please enter your name.",
	FieldDepartment: "Please enter your department.",
}

var structFields = map[string]Field{
	"UserID":     FieldUserID,
	"Name":       FieldName,
	"Department": FieldDepartment,
}

var validate = validator.New()

// Validate checks the trimmed inputs and stops at the first missing one.
// It returns a *Error, or nil when every field is present.
func Validate(fs Fields) error {
	err := validate.Struct(fs.Trimmed())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	// ValidationErrors follow struct field order, so the first one is the first missing input
	field := structFields[verrs[0].StructField()]
	return &Error{Field: field, Message: messages[field]}
}
