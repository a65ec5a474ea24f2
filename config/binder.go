package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Binder decodes merged source maps into typed structs and validates the
// result. Fields map through `config` tags; rules live in `validate` tags.
// Decoding is weakly typed so env/cli string values convert to ints,
// booleans, and durations ("5s") without the source caring.
type Binder struct {
	validator *validator.Validate
}

// BindError wraps a failure from either stage so callers can tell a decode
// problem (wrong shape) from a validation problem (wrong value).
type BindError struct {
	// Stage is "decode" or "validate".
	Stage string
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Stage, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

func NewBinder() *Binder {
	return &Binder{validator: validator.New()}
}

// Bind populates target (a struct pointer) from source and validates it.
// The target may be partially populated when validation fails; callers must
// discard it on error.
func (b *Binder) Bind(source map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		TagName: "config",
	})
	if err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := decoder.Decode(source); err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := b.validator.Struct(target); err != nil {
		return &BindError{Stage: "validate", Err: err}
	}
	return nil
}
