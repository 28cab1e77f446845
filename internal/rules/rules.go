package rules

import "fmt"

// Rule represents a qualflow rule code.
type Rule int

const (
	ruleInvalid Rule = iota

	QF001Unanalyzable
	QF010NilDereference
	QF020NilToNonNullField
)

// String returns the canonical code and short name of the rule.
// Example: "QF010: NilDereference"
func (r Rule) String() string {
	switch r {
	case QF001Unanalyzable:
		return "QF001: Unanalyzable"
	case QF010NilDereference:
		return "QF010: NilDereference"
	case QF020NilToNonNullField:
		return "QF020: NilToNonNullField"
	default:
		return fmt.Sprintf("rule-unknown(%d)", r)
	}
}

// Code returns the bare code of the rule, like "QF010".
func (r Rule) Code() string {
	switch r {
	case QF001Unanalyzable:
		return "QF001"
	case QF010NilDereference:
		return "QF010"
	case QF020NilToNonNullField:
		return "QF020"
	default:
		return fmt.Sprintf("QF???(%d)", r)
	}
}

// Description returns the human-readable explanation of the rule.
func (r Rule) Description() string {
	switch r {
	case QF001Unanalyzable:
		return "Function body cannot be turned into a control flow graph."
	case QF010NilDereference:
		return "Dereferenced value must be proven non-nil at the dereference."
	case QF020NilToNonNullField:
		return "Value stored into a non-nil field must be proven non-nil."
	default:
		return fmt.Sprintf("unknown-rule(%d)", r)
	}
}

// Canonical constructors for readability and stable call sites.

func Unanalyzable() Rule      { return QF001Unanalyzable }
func NilDereference() Rule    { return QF010NilDereference }
func NilToNonNullField() Rule { return QF020NilToNonNullField }
