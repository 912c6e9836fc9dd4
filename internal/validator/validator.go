// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"moneyrats/internal/invitecode"
	"moneyrats/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("invite_code", validateInviteCode)
		_ = v.RegisterValidation("duration_months", validateDurationMonths)
	}
}

func validateInviteCode(fl validator.FieldLevel) bool {
	return invitecode.IsValid(fl.Field().String())
}

func validateDurationMonths(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= models.MinDurationMonths && n <= models.MaxDurationMonths
}
