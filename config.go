package persistpager

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Recognized configuration keys. Unknown keys are passed through to the listener registrar.
const (
	// QueryBuilderMethodKey names the repository method building the query.
	QueryBuilderMethodKey = "query_builder_method"
	// MaxPerPageKey sets the page size of the provided pager.
	MaxPerPageKey = "max_per_page"
	// SortKey holds a list of "column asc|desc" orderings applied by the adapter.
	SortKey = "sort"
	// SortColumnsKey maps the column names accepted in SortKey to backend columns.
	// When set, SortKey may only name its keys.
	SortColumnsKey = "sort_columns"
)

// Config is a flat option mapping. A provider keeps its base Config read-only and
// merges a per-call override over it.
type Config map[string]any

// Clone returns a shallow copy. A nil Config clones to an empty one.
func (c Config) Clone() Config {
	return lo.Assign(c)
}

// Merge returns a new Config holding c with every key of override applied on
// top. The merge is shallow: a nested value in override replaces the base value
// wholesale. Neither input is modified.
func (c Config) Merge(override Config) Config {
	return lo.Assign(c, override)
}

// Has reports whether key is set.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// String returns the value of key as a string. Absent or nil values yield "".
func (c Config) String(key string) (string, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return "", nil
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("config key %q: %w", key, err)
	}

	return s, nil
}

// Int returns the value of key as an int and whether it was set.
func (c Config) Int(key string) (int, bool, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return 0, false, nil
	}

	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, true, fmt.Errorf("config key %q: %w", key, err)
	}

	return i, true, nil
}

// Bool returns the value of key as a bool. Absent values yield false.
func (c Config) Bool(key string) (bool, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return false, nil
	}

	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("config key %q: %w", key, err)
	}

	return b, nil
}

// Strings returns the value of key as a string slice. A single string is
// treated as a one-element list.
func (c Config) Strings(key string) ([]string, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return nil, nil
	}

	if s, isString := v.(string); isString {
		return []string{s}, nil
	}

	ss, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("config key %q: %w", key, err)
	}

	return ss, nil
}

// StringMap returns the value of key as a string mapping.
func (c Config) StringMap(key string) (map[string]string, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return nil, nil
	}

	m, err := cast.ToStringMapStringE(v)
	if err != nil {
		return nil, fmt.Errorf("config key %q: %w", key, err)
	}

	return m, nil
}

// Microseconds reads an integer number of microseconds as a duration.
func (c Config) Microseconds(key string) (time.Duration, error) {
	us, _, err := c.Int(key)
	if err != nil {
		return 0, err
	}

	return time.Duration(us) * time.Microsecond, nil
}

// SortFromConfig parses the SortKey entry of cfg. Column names are resolved
// through SortColumnsKey when present and used as is otherwise.
func SortFromConfig(cfg Config) (Orderings, error) {
	raw, err := cfg.Strings(SortKey)
	if err != nil || len(raw) == 0 {
		return nil, err
	}

	var mapping ColumnMapping
	mapping, err = cfg.StringMap(SortColumnsKey)
	if err != nil {
		return nil, err
	}
	if len(mapping) == 0 {
		mapping = nil
	}

	orderings, err := ParseSort(raw, mapping)
	if err != nil {
		return nil, fmt.Errorf("config key %q: %w", SortKey, err)
	}

	if err = orderings.validate(); err != nil {
		return nil, fmt.Errorf("config key %q: %w", SortKey, err)
	}

	return orderings, nil
}
