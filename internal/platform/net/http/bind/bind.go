// Package bind decodes request bodies and runs struct validation on them
package bind

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "grantwise/internal/platform/errors"
	"grantwise/internal/platform/validate"
)

// JSONOptions controls decoding
type JSONOptions struct {
	MaxBytes       int64 // 0 means 1MB
	AllowUnknown   bool
	AllowEmptyBody bool
}

// ParseJSON decodes the body into T and validates it. Decode problems are
// ErrorCodeJSON; validation failures are ErrorCodeValidation with the field set
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero, dst T
	var o JSONOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = 1 << 20
	}
	if r.Body == nil {
		r.Body = http.NoBody
	}
	defer r.Body.Close()

	br := bufio.NewReader(io.LimitReader(r.Body, o.MaxBytes))
	if _, err := br.Peek(1); errors.Is(err, io.EOF) {
		if !o.AllowEmptyBody {
			return zero, perr.JSONErrf("empty body")
		}
		return dst, validate.Struct(dst)
	}

	dec := json.NewDecoder(br)
	if !o.AllowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&dst); err != nil {
		return zero, perr.Wrap(err, perr.ErrorCodeJSON, "invalid JSON")
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := validate.Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}
