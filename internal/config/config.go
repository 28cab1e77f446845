package config

import (
	"bytes"
	_ "embed"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/transfer"
)

//go:embed nullness.yaml
var nullnessProfile []byte

// Config is a base type system profile as it is written in YAML. Qualifiers are referred by names.
type Config struct {
	Qualifiers []Qualifier `yaml:"qualifiers"`

	// Nullable is a qualifier of values which may be nil, top when empty.
	Nullable string `yaml:"nullable"`

	// NonNull is a qualifier required at dereferences.
	NonNull string `yaml:"nonnull"`

	Defaults    Defaults        `yaml:"defaults"`
	Values      Values          `yaml:"values"`
	Conditions  []Condition     `yaml:"conditions"`
	Terminators []mir.Reference `yaml:"terminators"`
	Pure        []mir.Reference `yaml:"pure"`
	Returns     []Return        `yaml:"returns"`
	Effects     []Effect        `yaml:"effects"`
}

// Qualifier declares a qualifier and its direct supertypes.
type Qualifier struct {
	Name      string   `yaml:"name"`
	SubtypeOf []string `yaml:"subtypeOf"`
}

// Defaults are declared qualifiers of entities without explicit declarations.
type Defaults struct {
	Local    string `yaml:"local"`
	Param    string `yaml:"param"`
	Receiver string `yaml:"receiver"`
	Field    string `yaml:"field"`
	Call     string `yaml:"call"`
}

// Values are qualifiers of expressions which are not trackable.
type Values struct {
	Null       string `yaml:"null"`
	Literal    string `yaml:"literal"`
	Allocation string `yaml:"allocation"`
	Computed   string `yaml:"computed"`
	Call       string `yaml:"call"`
	Element    string `yaml:"element"`
	Unknown    string `yaml:"unknown"`
}

// Condition is a condition handler.
type Condition struct {
	Kind transfer.ConditionKind `yaml:"kind"`

	// Literal is one of null, bool, number, string, other.
	Literal    string        `yaml:"literal"`
	Value      string        `yaml:"value"`
	Type       string        `yaml:"type"`
	Func       mir.Reference `yaml:"func"`
	Arg        int           `yaml:"arg"`
	OnMatch    string        `yaml:"onMatch"`
	OnMismatch string        `yaml:"onMismatch"`
}

// Return declares a qualifier of call results.
type Return struct {
	Func      mir.Reference `yaml:"func"`
	Qualifier string        `yaml:"qualifier"`
}

// Effect is a postcondition of a call: argument Arg, -1 for the receiver, gets
// the qualifier after a normal return.
type Effect struct {
	Func      mir.Reference `yaml:"func"`
	Arg       int           `yaml:"arg"`
	Qualifier string        `yaml:"qualifier"`
}

// Default returns the built-in nullness profile.
func Default() *Config {
	c, err := Parse(nullnessProfile)
	if err != nil {
		panic(errors.Wrap(err, "parse built-in nullness profile"))
	}

	return c
}

// Load reads a profile from the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	return c, nil
}

// Parse decodes a profile. Unknown fields are errors.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Config
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty config")
		}
		return nil, errors.Wrap(err, "decode yaml")
	}

	return &c, nil
}
