package validate

// This package adds struct and field validation as a thin wrapper around the go-playground/validator package.
//
// e.g. internal/geometry/geometry.go
//   type Snapshot struct {
//       TriggerTop  float64 `validate:"gte=0"`
//       ...
//   }
//
// and internal/config/config.go, which uses the custom "position" and "anchor" tags
// registered below for enum-typed fields.

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Checker is implemented by enum-like types that know their own valid range.
type Checker interface {
	IsValid() bool
}

// validatorInstance is a shared validator for the application.
// It is initialized once and reused to avoid repeated allocations.
//
//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		// position and anchor share the same rule: the value must report itself valid.
		_ = validatorInst.RegisterValidation("position", checkerValid)
		_ = validatorInst.RegisterValidation("anchor", checkerValid)
	})
	return validatorInst
}

func checkerValid(fl validator.FieldLevel) bool {
	c, ok := fl.Field().Interface().(Checker)
	if !ok {
		return false
	}
	return c.IsValid()
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}
