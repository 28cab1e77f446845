package config

import (
	"encoding"
	"fmt"
)

// FuncKind describes what is known about a function.
type FuncKind int

const (
	FuncKindInvalid FuncKind = iota

	// FuncKindTerminator never returns: it stops the program or the current goroutine.
	FuncKindTerminator

	// FuncKindPure does not change anything a caller can observe through its variables.
	FuncKindPure

	// FuncKindNonNil always returns a non-nil value.
	FuncKindNonNil
)

var funcKindValues = map[FuncKind]string{
	FuncKindTerminator: "terminator",
	FuncKindPure:       "pure",
	FuncKindNonNil:     "nonNil",
}

func (k FuncKind) String() string {
	v, ok := funcKindValues[k]
	if !ok {
		return fmt.Sprintf("func-kind-invalid(%d)", k)
	}

	return v
}

var (
	_ encoding.TextUnmarshaler = (*FuncKind)(nil)
	_ encoding.TextMarshaler   = FuncKind(0)
)

// UnmarshalText for setting values with configs, CLI, etc.
func (k *FuncKind) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for kind, v := range funcKindValues {
		if v == text {
			*k = kind
			return nil
		}
	}

	return fmt.Errorf("unknown function kind %q", text)
}

func (k FuncKind) MarshalText() ([]byte, error) {
	v, ok := funcKindValues[k]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid FuncKind(%d)", k)
	}

	return []byte(v), nil
}
