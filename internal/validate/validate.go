package validate

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
	MaxUsernameLen = 64
	MaxTitleLen    = 200
)

// Filter kinds understood by Filter.
const (
	KindEmail   = "email"
	KindURL     = "url"
	KindInt     = "int"
	KindFloat   = "float"
	KindBoolean = "boolean"
	KindIP      = "ip"
	KindMAC     = "mac"
	KindDomain  = "domain"
)

var (
	ErrUnknownFilter = errors.New("unknown filter")
	ErrFiltered      = errors.New("value rejected by filter")
)

var tags = map[string]string{
	KindEmail:   "email",
	KindURL:     "url",
	KindInt:     "integer",
	KindFloat:   "float",
	KindBoolean: "bool",
	KindIP:      "ip",
	KindMAC:     "mac",
	KindDomain:  "fqdn|hostname",
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
			_, err := strconv.ParseInt(fl.Field().String(), 10, 64)
			return err == nil
		})
		_ = validate.RegisterValidation("float", func(fl validator.FieldLevel) bool {
			_, err := strconv.ParseFloat(fl.Field().String(), 64)
			return err == nil
		})
		// Accepts the same spellings as a form checkbox or a boolean flag.
		_ = validate.RegisterValidation("bool", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "1", "0", "true", "false", "on", "off", "yes", "no", "":
				return true
			}
			return false
		})
	})
	return validate
}

// Filter checks value against one of the filter kinds. It returns ErrUnknownFilter for kinds it does not
// know, and an error wrapping ErrFiltered when the value is rejected.
func Filter(kind, value string) error {
	tag, ok := tags[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, kind)
	}

	if err := instance().Var(value, tag); err != nil {
		return fmt.Errorf("%w: %s", ErrFiltered, kind)
	}
	return nil
}

// LoginForm checks the shape of the credentials before they are compared.
func LoginForm(username, password string) error {
	return errors.Join(Username(username), Password(password))
}

// PostForm checks a post before it is stored.
func PostForm(title, content string) error {
	var errs []error
	if len(title) == 0 {
		errs = append(errs, errors.New("empty title"))
	} else if len(title) > MaxTitleLen {
		errs = append(errs, fmt.Errorf("title too long; max %d characters", MaxTitleLen))
	}
	if len(content) == 0 {
		errs = append(errs, errors.New("empty content"))
	}
	return errors.Join(errs...)
}

func Password(password string) error {
	l := len(password)
	switch {
	case l == 0:
		return errors.New("empty password")
	case l < MinPasswordLen:
		return fmt.Errorf("password too short; min %d characters", MinPasswordLen)
	case l > MaxPasswordLen:
		return fmt.Errorf("password too long; max %d characters", MaxPasswordLen)
	}
	return nil
}

func Username(username string) error {
	if l := len(username); l == 0 {
		return errors.New("empty username")
	} else if l > MaxUsernameLen {
		return fmt.Errorf("username too long; max %d characters", MaxUsernameLen)
	}
	return nil
}
