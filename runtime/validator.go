package runtime

import "github.com/go-playground/validator/v10"

const DefaultInvitePageSize = 5

// NewValidator checks the struct tags of commands before they reach a session.
func NewValidator() *validator.Validate {
	return validator.New()
}
