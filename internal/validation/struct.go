package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every struct validation failure.
var ErrInvalid = errors.New("validation failed")

var (
	shared     *validator.Validate
	sharedOnce sync.Once
)

// Validator returns the process-wide validator with the lobstat rules
// registered. It is safe for concurrent use.
func Validator() *validator.Validate {
	sharedOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("ticker", isTicker)
		_ = v.RegisterValidation("isodate", isISODate)
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "yaml", "toml"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		shared = v
	})
	return shared
}

// Struct validates s and flattens field errors into one readable error
// wrapping ErrInvalid.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// fieldMessages maps a validation tag to a message; {field} and {param}
// are substituted.
var fieldMessages = map[string]string{
	"required": "{field} is required",
	"min":      "{field} must be at least {param}",
	"max":      "{field} must be at most {param}",
	"gte":      "{field} must be >= {param}",
	"lte":      "{field} must be <= {param}",
	"gt":       "{field} must be > {param}",
	"lt":       "{field} must be < {param}",
	"oneof":    "{field} must be one of [{param}]",
	"ticker":   "{field} must be a ticker symbol",
	"isodate":  "{field} must be a YYYY-MM-DD date",
}

func formatFieldError(fe validator.FieldError) string {
	// drop the top-level struct name
	_, field, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		field = fe.Namespace()
	}
	tmpl, ok := fieldMessages[fe.Tag()]
	if !ok {
		tmpl = "{field} failed {tag} validation"
	}
	return strings.NewReplacer("{field}", field, "{param}", fe.Param(), "{tag}", fe.Tag()).Replace(tmpl)
}

// isTicker accepts upper-case symbols of up to ten letters, digits or dots.
func isTicker(fl validator.FieldLevel) bool {
	return IsTicker(fl.Field().String())
}

// IsTicker reports whether s is a valid ticker symbol.
func IsTicker(s string) bool {
	if len(s) < 1 || len(s) > 10 {
		return false
	}
	for _, ch := range s {
		if !((ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '.') {
			return false
		}
	}
	return true
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}
