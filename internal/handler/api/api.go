// Package api contains the JSON storefront endpoints: cart, checkout,
// orders and auth. Handlers read the shopper identity resolved by the
// middleware, delegate to the services, and serialize results with
// display amounts alongside raw cents.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/stridewear/stride/internal/domain"
)

// newValidator builds the request validator. Field names in error
// responses come from the json tag, not the Go field name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation. The returned error is already a domain error suitable for
// the response helpers.
func decodeAndValidate(r *http.Request, v *validator.Validate, op string, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Errorf(domain.EINVALID, op, "Invalid JSON body")
	}
	if err := v.Struct(dst); err != nil {
		return validationError(op, err)
	}
	return nil
}

// validationError converts validator failures into a domain
// ValidationError with per-field messages.
func validationError(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Errorf(domain.EINVALID, op, "Invalid request body")
	}

	var out error
	for _, fe := range verrs {
		out = domain.AddFieldError(out, fe.Field(), validationMessage(fe))
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "uuid":
		return "Must be a valid UUID"
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
