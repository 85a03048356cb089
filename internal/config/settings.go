package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// fileSettings is one mapping from a config file. viper lowercases keys, so
// lookups use lowercase spellings. prefix names the enclosing section in
// error messages, e.g. "tracing.".
type fileSettings struct {
	prefix string
	values map[string]interface{}
}

func newFileSettings(prefix string, raw interface{}) (fileSettings, error) {
	s := fileSettings{prefix: prefix, values: map[string]interface{}{}}
	switch v := raw.(type) {
	case nil:
	case map[string]interface{}:
		for key, val := range v {
			s.values[strings.ToLower(strings.TrimSpace(key))] = val
		}
	case map[interface{}]interface{}:
		for key, val := range v {
			s.values[strings.ToLower(strings.TrimSpace(fmt.Sprint(key)))] = val
		}
	default:
		return fileSettings{}, fmt.Errorf("%s: expected a mapping, got %T", strings.TrimSuffix(prefix, "."), raw)
	}
	return s, nil
}

// find returns the first spelling of a setting present in the file.
func (s fileSettings) find(keys ...string) (string, interface{}, bool) {
	for _, key := range keys {
		if val, ok := s.values[key]; ok {
			return s.prefix + key, val, true
		}
	}
	return "", nil, false
}

func (s fileSettings) section(key string) (fileSettings, bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return fileSettings{}, false, nil
	}
	sub, err := newFileSettings(s.prefix+key+".", raw)
	return sub, true, err
}

// count reads a whole number no smaller than min. Fractional values such as
// "tasks: 2.5" are rejected rather than truncated.
func (s fileSettings) count(dst *int, min int, keys ...string) error {
	name, raw, ok := s.find(keys...)
	if !ok {
		return nil
	}
	n, err := wholeNumber(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if n < min {
		return fmt.Errorf("%s: must be >= %d, got %d", name, min, n)
	}
	*dst = n
	return nil
}

// duration reads a Go duration string ("10ms", "2s") or a bare number of
// milliseconds, the unit lockbench reports in.
func (s fileSettings) duration(dst *time.Duration, keys ...string) error {
	name, raw, ok := s.find(keys...)
	if !ok {
		return nil
	}
	var d time.Duration
	if str, isString := raw.(string); isString {
		parsed, err := time.ParseDuration(strings.TrimSpace(str))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		d = parsed
	} else {
		ms, err := number(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		d = time.Duration(ms * float64(time.Millisecond))
	}
	if d < 0 {
		return fmt.Errorf("%s: must be >= 0, got %s", name, d)
	}
	*dst = d
	return nil
}

// fraction reads a number in [0, 1].
func (s fileSettings) fraction(dst *float64, keys ...string) error {
	name, raw, ok := s.find(keys...)
	if !ok {
		return nil
	}
	f, err := number(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("%s: must be between 0.0 and 1.0, got %g", name, f)
	}
	*dst = f
	return nil
}

func (s fileSettings) toggle(dst *bool, keys ...string) error {
	name, raw, ok := s.find(keys...)
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case bool:
		*dst = v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not true or false", name, v)
		}
		*dst = b
	default:
		return fmt.Errorf("%s: expected true or false, got %T", name, raw)
	}
	return nil
}

// text reads a trimmed scalar. Numbers are accepted so that unquoted values
// like "service_name: 42" still load.
func (s fileSettings) text(dst *string, keys ...string) error {
	name, raw, ok := s.find(keys...)
	if !ok {
		return nil
	}
	str, err := scalar(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = strings.TrimSpace(str)
	return nil
}

// list reads a sequence or a comma-separated string, the same forms the
// repeatable --strategy and --threshold flags take.
func (s fileSettings) list(dst *[]string, keys ...string) error {
	name, raw, ok := s.find(keys...)
	if !ok {
		return nil
	}
	var out []string
	switch v := raw.(type) {
	case string:
		out = strings.Split(v, ",")
	case []string:
		out = append(out, v...)
	case []interface{}:
		for i, item := range v {
			str, err := scalar(item)
			if err != nil {
				return fmt.Errorf("%s[%d]: %w", name, i, err)
			}
			out = append(out, str)
		}
	default:
		return fmt.Errorf("%s: expected a list, got %T", name, raw)
	}
	items := make([]string, 0, len(out))
	for _, item := range out {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
	return nil
}

func wholeNumber(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%g is not a whole number", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%q is not a whole number", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected a whole number, got %T", raw)
	}
}

func number(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}

func scalar(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("expected a single value, got %T", raw)
	}
}
