package reflected

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miruken-go/reflected/catalog"
)

type (
	// NotFoundError reports a target type or member that does
	// not exist in the host.
	NotFoundError struct {
		Binding string
		Target  string
		Kind    catalog.Kind
		Member  string
	}

	// AmbiguousOverloadError reports a name matching more than
	// one type or member.
	AmbiguousOverloadError struct {
		Binding    string
		Target     string
		Candidates []string
	}

	// SignatureMismatchError reports a member whose shape or scope
	// differs from the one declared.
	SignatureMismatchError struct {
		Binding string
		Member  *catalog.Member
		Reason  string
	}

	// SynthesisError reports a resolved member that cannot be
	// adapted to the declared callable.
	SynthesisError struct {
		Binding string
		Member  *catalog.Member
		Reason  error
	}

	// DescriptorError reports a malformed Descriptor.
	DescriptorError struct {
		Descriptor *Descriptor
		Cause      error
	}
)

// ErrNotBound is returned when a slot is read before its
// binding succeeded.
var ErrNotBound = errors.New("reflected: binding not bound")


func (e *NotFoundError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("binding %v: type %q not found", e.Binding, e.Target)
	}
	return fmt.Sprintf("binding %v: %v %q not found on %v", e.Binding, e.Kind, e.Member, e.Target)
}

func (e *AmbiguousOverloadError) Error() string {
	return fmt.Sprintf("binding %v: %q is ambiguous between %v",
		e.Binding, e.Target, strings.Join(e.Candidates, ", "))
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("binding %v: %v %v", e.Binding, e.Member, e.Reason)
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("binding %v: unable to synthesize %v: %v", e.Binding, e.Member, e.Reason)
}

func (e *SynthesisError) Unwrap() error {
	return e.Reason
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("invalid binding %v: %v", e.Descriptor, e.Cause)
}

func (e *DescriptorError) Unwrap() error {
	return e.Cause
}
