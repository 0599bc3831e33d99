package validator

import (
	"fmt"
	"strings"

	v10 "github.com/go-playground/validator/v10"
)

// Validator provides struct validation backed by go-playground/validator
type Validator interface {
	Validate(interface{}) error
}

type validator struct {
	v *v10.Validate
}

func New() Validator {
	return &validator{v: v10.New(v10.WithRequiredStructEnabled())}
}

func (val *validator) Validate(obj interface{}) error {
	err := val.v.Struct(obj)
	if err == nil {
		return nil
	}

	verrs, ok := err.(v10.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
