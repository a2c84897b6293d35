// Package jsutil converts values crossing the Goja boundary.
package jsutil

import (
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/hlop3z/tzstamp/internal/alerr"
)

// IsNullish reports whether v is missing, undefined or null.
func IsNullish(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// Arg returns the i-th call argument, or undefined when it was not passed.
func Arg(call goja.FunctionCall, i int) goja.Value {
	if i < len(call.Arguments) {
		return call.Arguments[i]
	}
	return goja.Undefined()
}

// GetString retrieves a string property from a Goja object.
// Returns the value and true if the key exists and is a string.
func GetString(obj *goja.Object, key string) (string, bool) {
	if obj == nil {
		return "", false
	}
	v := obj.Get(key)
	if IsNullish(v) {
		return "", false
	}
	s, ok := v.Export().(string)
	return s, ok
}

// ToGoString converts a Goja value to a Go string.
// Undefined and null become "", other non-strings use their JS string form.
func ToGoString(v goja.Value) string {
	if IsNullish(v) {
		return ""
	}
	if s, ok := v.Export().(string); ok {
		return s
	}
	return v.String()
}

// ToTimestamp converts a timestamp argument to the raw string form the
// formatter parses. Date objects become RFC 3339 in UTC; everything else
// uses ToGoString.
func ToTimestamp(v goja.Value) string {
	if IsNullish(v) {
		return ""
	}
	if t, ok := v.Export().(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return ToGoString(v)
}

// Join renders call arguments the way console.log does.
func Join(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if IsNullish(a) {
			if a != nil && goja.IsNull(a) {
				parts[i] = "null"
			} else {
				parts[i] = "undefined"
			}
			continue
		}
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

// WrapJSError wraps an error from the runtime with the given code.
// Interrupts become ErrJSTimeout. Returns nil if err is nil.
func WrapJSError(err error, code alerr.Code) *alerr.Error {
	if err == nil {
		return nil
	}
	if interrupted, ok := err.(*goja.InterruptedError); ok {
		return alerr.Wrap(alerr.ErrJSTimeout, err, "script execution timed out").
			With("interrupt", interrupted.String())
	}
	if exception, ok := err.(*goja.Exception); ok {
		return alerr.Wrap(code, err, exception.Error())
	}
	return alerr.Wrap(code, err, err.Error())
}
