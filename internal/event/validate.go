package event

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report the wire names of failing fields.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate checks that e carries every field its kind requires. It returns
// nil or a *MalformedEventError.
func Validate(e Event) error {
	if e == nil {
		return &MalformedEventError{Reason: "nil event"}
	}
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			reason := fmt.Sprintf("failed %q", fe.Tag())
			if fe.Param() != "" {
				reason = fmt.Sprintf("failed %q (%s)", fe.Tag(), fe.Param())
			}
			return &MalformedEventError{Kind: e.Kind(), Field: fe.Field(), Reason: reason}
		}
		return &MalformedEventError{Kind: e.Kind(), Err: err}
	}
	return nil
}
