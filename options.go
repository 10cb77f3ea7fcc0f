package reflected

import (
	"errors"

	"github.com/asaskevich/govalidator"
	"github.com/imdario/mergo"
)

// OverloadPolicy decides how a member name matching more
// than one overload is resolved.
type OverloadPolicy string

const (
	// FirstMatch binds the first overload in declaration order.
	FirstMatch OverloadPolicy = "first"

	// StrictOverloads reports AmbiguousOverload instead.
	StrictOverloads OverloadPolicy = "strict"
)

// Options control a binding pass.
type Options struct {
	Overloads OverloadPolicy `path:"overloads" valid:"in(first|strict)"`
	Verbosity int            `path:"verbosity" valid:"range(0|10)"`

	// Required lists the identities of bindings whose failure
	// is fatal to Bind.
	Required []string `path:"required"`
}

// DefaultOptions are applied to anything left unset.
var DefaultOptions = Options{
	Overloads: FirstMatch,
}

// Validate checks the options are in range.
func (o Options) Validate() error {
	if _, err := govalidator.ValidateStruct(o); err != nil {
		var errs govalidator.Errors
		if errors.As(err, &errs) && len(errs) == 1 {
			return errs[0]
		}
		return err
	}
	return nil
}

// MergeOptions merges the values set in from into the unset
// values of into. Slices are appended.
func MergeOptions(from, into *Options) bool {
	return mergo.Merge(into, from, mergo.WithAppendSlice) == nil
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions
	MergeOptions(&defaults, &o)
	return o
}
