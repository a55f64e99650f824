// Package validation checks configuration structs and decodes raw pipe
// parameter maps into typed schemas.
//
// Struct tag validation uses go-playground/validator:
//
//	type Options struct {
//	    ModelName string `mapstructure:"model_name" validate:"required"`
//	}
//	err := validation.Validate(opts)
//
// Decode turns a definition's parameter map into a schema struct, rejecting
// unknown keys and then applying the struct's validate tags:
//
//	params := noiseParams{SampleRate: 100}
//	err := validation.Decode(raw, &params)
package validation
