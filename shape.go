package reflected

import (
	"fmt"

	"github.com/miruken-go/reflected/catalog"
)

type (
	// Shape is the calling convention a binding is declared with.
	// It also determines the category a binding is reported under.
	Shape uint8

	// Status is the terminal state of a processed binding.
	Status uint8

	// Strategy records how a callable was synthesized.
	Strategy uint8
)

const (
	GetterShape Shape = iota
	SetterShape
	InvokerShape
	MemberInfoShape
	EventShape
	shapeCount
)

const (
	Resolved Status = iota
	NotFound
	AmbiguousOverload
	SignatureMismatch
	SynthesisFailed
)

const (
	// Direct callables are the bound member itself or a typed
	// closure over it with no reflection on the call path.
	Direct Strategy = iota

	// Dynamic callables convert their arguments and results
	// through reflection on every call.
	Dynamic
)

var (
	shapeNames    = [...]string{"Getter", "Setter", "Invoker", "MemberInfo", "Event"}
	statusNames   = [...]string{"Resolved", "NotFound", "AmbiguousOverload", "SignatureMismatch", "SynthesisFailed"}
	strategyNames = [...]string{"Direct", "Dynamic"}
)


// Shape

func (s Shape) String() string {
	if s < shapeCount {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", s)
}

// Accepts reports whether members of kind can be bound with the shape.
func (s Shape) Accepts(kind catalog.Kind) bool {
	switch s {
	case GetterShape, SetterShape:
		return kind == catalog.Field || kind == catalog.Property
	case InvokerShape:
		return kind == catalog.Method || kind == catalog.Constructor
	case MemberInfoShape:
		return kind.Valid()
	case EventShape:
		return kind == catalog.Event
	}
	return false
}


// Status

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", s)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}


// Strategy

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", s)
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
