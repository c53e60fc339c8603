package reflection

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies reflection failures.
type ErrorKind int

const (
	// LookupMiss is a name, handle or overload that does not exist.
	LookupMiss ErrorKind = iota
	// CapabilityMismatch is an operation the target cannot perform, such as a
	// container operation on a scalar field.
	CapabilityMismatch
	// SchemaDrift is two registrations of one type with different shapes.
	SchemaDrift
	// MalformedInput is a document that does not match the reflected shape.
	MalformedInput
)

// String returns the string representation of the kind
func (k ErrorKind) String() string {
	switch k {
	case LookupMiss:
		return "lookup_miss"
	case CapabilityMismatch:
		return "capability_mismatch"
	case SchemaDrift:
		return "schema_drift"
	case MalformedInput:
		return "malformed_input"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for ErrorKind
func (k ErrorKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for ErrorKind
func (k *ErrorKind) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "lookup_miss":
		*k = LookupMiss
	case "capability_mismatch":
		*k = CapabilityMismatch
	case "schema_drift":
		*k = SchemaDrift
	case "malformed_input":
		*k = MalformedInput
	default:
		return fmt.Errorf("unknown error kind: %s", data)
	}
	return nil
}

// Sentinel causes, usable with errors.Is.
var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrMissingField     = errors.New("missing field")
	ErrUnregisteredType = errors.New("unregistered type")
	ErrValidation       = errors.New("validation failed")
)

// Error is the single error type of the package. Capability mismatches and
// schema drift are raised with panic(*Error); malformed input is returned.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Type    string    `json:"type,omitempty"`
	Member  string    `json:"member,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("reflection: ")
	b.WriteString(e.Kind.String())
	if e.Type != "" {
		b.WriteString(": ")
		b.WriteString(e.Type)
		if e.Member != "" {
			b.WriteString(".")
			b.WriteString(e.Member)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}

func capabilityPanic(typeName, member, format string, args ...any) {
	panic(&Error{
		Kind:    CapabilityMismatch,
		Type:    typeName,
		Member:  member,
		Message: fmt.Sprintf(format, args...),
	})
}

func malformed(typeName, member string, err error) error {
	return &Error{Kind: MalformedInput, Type: typeName, Member: member, Err: err}
}

func unexpected(typeName, member, want string) error {
	return malformed(typeName, member, fmt.Errorf("%w: expected %s", ErrMalformedInput, want))
}

func unregistered(ref TypeRef) error {
	return fmt.Errorf("%w: %s", ErrUnregisteredType, ref.Name)
}
