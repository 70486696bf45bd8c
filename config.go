package docbench

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// WorkloadConfig is the glue between the orchestrator and a workload:
// iteration counts, an optional seed, and an open parameter map whose
// recognized keys include at minimum documentCount, nestingDepth,
// fieldsPerLevel, targetPath, fieldCount, documentSizeBytes,
// sizeTolerance, arrayFieldCount. Unknown keys are preserved and
// ignored by the engine.
//
// Struct tags carry both json and yaml names, following the teacher's
// own dual-tagged structs (events/performance.go's `bson:... json:...
// yaml:...` fields); LoadWorkloadConfigYAML binds the yaml names, and
// the json names let the same struct be decoded from JSON.
type WorkloadConfig struct {
	Name             string                 `json:"name" yaml:"name"`
	Iterations       int                    `json:"iterations" yaml:"iterations"`
	WarmupIterations int                    `json:"warmupIterations" yaml:"warmupIterations"`
	Seed             *int64                 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Concurrency      int                    `json:"concurrency" yaml:"concurrency"`
	Params           map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
}

// NewWorkloadConfig returns a config with the documented defaults:
// 1000 iterations, 100 warmup iterations, concurrency 1, no seed.
func NewWorkloadConfig(name string) WorkloadConfig {
	return WorkloadConfig{
		Name:             name,
		Iterations:       1000,
		WarmupIterations: 100,
		Concurrency:      1,
		Params:           map[string]interface{}{},
	}
}

// WithSeed sets an explicit seed, returning the updated config.
func (c WorkloadConfig) WithSeed(seed int64) WorkloadConfig {
	c.Seed = &seed
	return c
}

// WithParam sets one parameter, returning the updated config.
func (c WorkloadConfig) WithParam(key string, value interface{}) WorkloadConfig {
	if c.Params == nil {
		c.Params = map[string]interface{}{}
	}
	c.Params[key] = value
	return c
}

// Validate checks the builder-level invariants (blank name,
// non-positive iterations, negative warmup, concurrency other than 1
// or 0, where 0 means unset and is treated as 1) and
// returns the human-readable diagnostics. An empty ValidationResult
// means valid.
func (c WorkloadConfig) Validate() ValidationResult {
	var r ValidationResult
	if c.Name == "" {
		r.add("name", "must not be blank")
	}
	if c.Iterations <= 0 {
		r.add("iterations", "must be positive, got %d", c.Iterations)
	}
	if c.WarmupIterations < 0 {
		r.add("warmupIterations", "must be non-negative, got %d", c.WarmupIterations)
	}
	if c.WarmupIterations > c.Iterations {
		// soft warning only, per §6: not a validation error.
	}
	if c.Concurrency != 0 && c.Concurrency != 1 {
		r.add("concurrency", "must be 1 in this release, got %d", c.Concurrency)
	}
	return r
}

// EffectiveConcurrency returns the concurrency to use, defaulting an
// unset (zero) value to 1.
func (c WorkloadConfig) EffectiveConcurrency() int {
	if c.Concurrency == 0 {
		return 1
	}
	return c.Concurrency
}

// ParamInt returns the integer value of key, or def if absent or not
// convertible.
func (c WorkloadConfig) ParamInt(key string, def int) int {
	v, ok := c.Params[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return def
}

// ParamString returns the string value of key, or def if absent.
func (c WorkloadConfig) ParamString(key, def string) string {
	v, ok := c.Params[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// ParamFloat returns the float64 value of key, or def if absent or not
// convertible.
func (c WorkloadConfig) ParamFloat(key string, def float64) float64 {
	v, ok := c.Params[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	}
	return def
}

// ParamBool returns the boolean value of key, or def if absent or not
// convertible.
func (c WorkloadConfig) ParamBool(key string, def bool) bool {
	v, ok := c.Params[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(t); err == nil {
			return b
		}
	}
	return def
}

// ParamList returns the []interface{} value of key, or def if absent
// or not convertible.
func (c WorkloadConfig) ParamList(key string, def []interface{}) []interface{} {
	v, ok := c.Params[key]
	if !ok {
		return def
	}
	if l, ok := v.([]interface{}); ok {
		return l
	}
	return def
}

// LoadWorkloadConfigYAML reads a WorkloadConfig from a YAML file at
// path, starting from NewWorkloadConfig's defaults for any field the
// file omits. Lets operators check a benchmark's configuration into
// version control instead of reconstructing long flag lists.
func LoadWorkloadConfigYAML(path string) (WorkloadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkloadConfig{}, errors.Wrapf(err, "problem reading config file %s", path)
	}

	cfg := NewWorkloadConfig("")
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return WorkloadConfig{}, errors.Wrapf(err, "problem parsing config file %s", path)
	}
	return cfg, nil
}
