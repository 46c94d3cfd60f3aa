package customvalidator

import (
	"regexp"

	"makerspace/internal/auditlog"
	"makerspace/internal/cardreader"
	"makerspace/internal/entities"

	"github.com/go-playground/validator/v10"
)

var universityIDPattern = regexp.MustCompile(`^\d+$`)

// RegisterCustomValidations registers the domain rules on v.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("university_id", isUniversityID); err != nil {
		return err
	}
	if err := v.RegisterValidation("errors_mode", isErrorsMode); err != nil {
		return err
	}
	if err := v.RegisterValidation("privilege", isPrivilege); err != nil {
		return err
	}
	return nil
}

func isUniversityID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) == cardreader.UniversityIDLength && universityIDPattern.MatchString(s)
}

func isErrorsMode(fl validator.FieldLevel) bool {
	switch auditlog.ErrorsMode(fl.Field().String()) {
	case auditlog.ErrorsOnly, auditlog.NoErrors, auditlog.ErrorsBoth:
		return true
	}
	return false
}

func isPrivilege(fl validator.FieldLevel) bool {
	return entities.Privilege(fl.Field().String()).Valid()
}
