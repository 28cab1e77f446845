package mir

import (
	"bytes"
	"encoding"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Reference identifies a callee.
//
// Text form is
//
//	"pkg/path".Name
//	"pkg/path".Type.Name
type Reference struct {
	Package string
	Type    string
	Name    string
}

// Func is a shortcut for a package level function reference.
func Func(pkg, name string) Reference {
	return Reference{Package: pkg, Name: name}
}

// MethodOf is a shortcut for a method reference.
func MethodOf(pkg, typ, name string) Reference {
	return Reference{Package: pkg, Type: typ, Name: name}
}

// IsZero reports whether the reference identifies nothing.
func (r Reference) IsZero() bool {
	return r == Reference{}
}

func (r Reference) String() string {
	if r.Type == "" {
		return fmt.Sprintf("%q.%s", r.Package, r.Name)
	}

	return fmt.Sprintf("%q.%s.%s", r.Package, r.Type, r.Name)
}

var (
	_ encoding.TextUnmarshaler = (*Reference)(nil)
	_ encoding.TextMarshaler   = Reference{}
)

func (r *Reference) UnmarshalText(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "" {
		return errors.New("empty reference")
	}

	if !strings.HasPrefix(s, `"`) {
		return errors.Errorf("reference must start with quoted package: %q", s)
	}
	quoted, err := strconv.QuotedPrefix(s)
	if err != nil {
		return errors.Errorf("malformed quoted package in reference: %q", s)
	}
	pkg, err := strconv.Unquote(quoted)
	if err != nil {
		return errors.Wrapf(err, "unquote package of reference %q", s)
	}
	if pkg == "" {
		return errors.Errorf("package cannot be empty in reference: %q", s)
	}

	rest := s[len(quoted):]
	if !strings.HasPrefix(rest, ".") {
		return errors.Errorf("reference must contain a name: %q", s)
	}
	rest = rest[1:]

	parts := strings.Split(rest, ".")
	if len(parts) > 2 {
		return errors.Errorf("reference must have 1 or 2 identifiers after package: %q", s)
	}
	for _, p := range parts {
		if !isIdent(p) {
			return errors.Errorf("invalid identifier %q in reference %q", p, s)
		}
	}

	r.Package = pkg
	switch len(parts) {
	case 1:
		r.Type = ""
		r.Name = parts[0]
	case 2:
		r.Type = parts[0]
		r.Name = parts[1]
	}

	return nil
}

func (r Reference) MarshalText() ([]byte, error) {
	if r.Package == "" {
		return nil, errors.New("cannot marshal Reference: empty Package")
	}
	if r.Name == "" {
		return nil, errors.New("cannot marshal Reference: empty Name")
	}

	return []byte(r.String()), nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
