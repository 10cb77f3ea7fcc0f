package catalog

import "fmt"

// Kind identifies the sort of member being bound.
type Kind uint8

const (
	Field Kind = iota
	Property
	Method
	Constructor
	Event
	TypeInfo
)

var kindNames = [...]string{
	Field:       "Field",
	Property:    "Property",
	Method:      "Method",
	Constructor: "Constructor",
	Event:       "Event",
	TypeInfo:    "TypeInfo",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Valid reports whether k is a known Kind.
func (k Kind) Valid() bool {
	return k <= TypeInfo
}
