package policy

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/autoalloc/internal/backend"
)

//go:embed schema.cue
var schemaCUE string

// DefaultCoreThreshold is the core count at which a free-list-sharded
// general allocator's contention reduction outweighs its metadata overhead.
// Below it a single-core machine pays the overhead for nothing.
const DefaultCoreThreshold = 2

// MobileRule selects the interpretation of the mobile table entry.
type MobileRule string

const (
	// MobileSecureNative respects the platform's hardened allocator when it
	// is linked (Scudo, libmalloc).
	MobileSecureNative MobileRule = "secure-native"

	// MobileSystem treats mobile as one bucket and falls back to System.
	MobileSystem MobileRule = "system"
)

// Config carries the tunable entries of the rule table.
//
// PinnedBackend never influences Decide; the CLI applies it when computing
// an effective decision from a policy file. Keeping it out of the table is
// what lets an audit observe "bound by override, table recommends
// otherwise".
type Config struct {
	MobileRule    MobileRule `yaml:"mobile_rule" json:"mobile_rule"`
	CoreThreshold int        `yaml:"core_threshold" json:"core_threshold"`
	PinnedBackend string     `yaml:"pinned_backend" json:"pinned_backend"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MobileRule:    MobileSecureNative,
		CoreThreshold: DefaultCoreThreshold,
		PinnedBackend: "",
	}
}

// Load reads a policy configuration from a YAML file.
//
// Absent fields keep their defaults. Unknown fields are rejected (catches
// typos), and the decoded value is validated against the embedded CUE
// schema before it is returned.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read policy config: %w", err)
	}
	return parse(data)
}

// parse decodes and validates raw YAML. Split from Load for tests.
func parse(data []byte) (Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse policy config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate unifies the config with the embedded CUE schema.
func validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("policy schema is invalid: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Policy"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("policy schema missing #Policy: %w", err)
	}

	unified := def.Unify(ctx.Encode(cfg))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid policy config: %w", err)
	}
	return nil
}

// Pinned resolves the configured backend pin, if any.
func (c Config) Pinned() (backend.Type, bool, error) {
	if c.PinnedBackend == "" {
		return backend.System, false, nil
	}
	t, err := backend.Parse(c.PinnedBackend)
	if err != nil {
		return backend.System, false, fmt.Errorf("invalid pinned_backend: %w", err)
	}
	return t, true, nil
}
