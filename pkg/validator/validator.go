// Package validator registers custom binding rules on the gin
// validation engine.
package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterRules installs domain-specific validation tags. Called once
// at startup before the router accepts traffic.
func RegisterRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("iin", validateIIN); err != nil {
		return fmt.Errorf("failed to register iin rule: %w", err)
	}
	return nil
}

// validateIIN checks a Kazakhstan individual identification number:
// exactly 12 digits. Empty values pass; pair with required when the
// field is mandatory.
func validateIIN(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	if len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
