package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"pdistats/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	// Slice elements are not walked by validate.Struct, so sources get
	// validated one by one.
	for i := range cv.conf.Sources {
		src := &cv.conf.Sources[i]
		sv := validate.Struct(src)
		if !sv.Validate() {
			return fmt.Errorf("source %d (%s): %w", i, src.Name, sv.Errors)
		}
	}

	return nil
}
