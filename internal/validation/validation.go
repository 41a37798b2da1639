// Package validation: satu instance validator utk semua request struct.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

func New() *validatorv10.Validate {
	return validatorv10.New(validatorv10.WithRequiredStructEnabled())
}

// DecodeAndValidate: decode JSON body lalu jalankan tag validasi.
// Error yang keluar sudah siap ditampilkan ke caller (400).
func DecodeAndValidate(r io.Reader, out any, v *validatorv10.Validate) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := v.Struct(out); err != nil {
		var ve validatorv10.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]string, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("validation failed: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}
