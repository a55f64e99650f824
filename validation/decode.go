package validation

import (
	"fmt"
	"math"
	"net/http"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/dyne/errors"
)

// Decode copies raw into out (a pointer to a schema struct) and validates
// the result. Keys missing from raw keep whatever out already holds, so
// callers preset defaults before decoding. Unknown keys, mistyped values and
// fractional numbers for integer fields are rejected.
func Decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "mapstructure",
		ErrorUnused: true,
		DecodeHook:  integralHook,
	})
	if err != nil {
		return errors.Internal(err)
	}
	if err := dec.Decode(raw); err != nil {
		return errors.New(errors.ErrCodeInvalidParameter, err.Error(), http.StatusBadRequest).WithCause(err)
	}
	if err := Validate(out); err != nil {
		appErr, _ := errors.AsAppError(err)
		appErr.Code = errors.ErrCodeInvalidParameter
		return appErr
	}
	return nil
}

func integralHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	if f, ok := data.(float64); ok && (f != math.Trunc(f) || math.IsInf(f, 0)) {
		return nil, fmt.Errorf("expected an integer, got %v", f)
	}
	return data, nil
}
