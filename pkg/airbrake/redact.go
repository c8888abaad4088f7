// redact.go implements key-pattern redaction of notice payload maps.

package airbrake

import (
	"fmt"
	"reflect"
	"regexp"
)

// redactedValue replaces any value whose key matches the blocklist.
const redactedValue = "[FILTERED]"

// DefaultKeysBlocklist returns the default key patterns considered
// security-sensitive. Patterns match keys, not values, and encode their
// own case-insensitivity.
func DefaultKeysBlocklist() []string {
	return []string{
		`(?i)password`,
		`(?i)passwd`,
		`(?i)secret`,
		`(?i)token`,
		`(?i)credential`,
		`(?i)authorization`,
	}
}

// compileBlocklist compiles blocklist pattern sources, failing loudly on
// the first invalid pattern so misconfiguration is caught at wiring time.
func compileBlocklist(sources []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		p, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("airbrake: compile keys blocklist pattern %q: %w", src, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// redactMap returns a copy of data with every value under a blocklisted
// key replaced by the redaction sentinel. Matched values are replaced
// whole: redaction never recurses into them, so nested keys under a
// sensitive branch are neither inspected nor exposed. String-keyed maps
// under non-matching keys are redacted recursively with the same
// patterns whatever their concrete type; typed maps are copied into
// map[string]any on the way down. The input map is never mutated.
// Redaction is idempotent.
func redactMap(data map[string]any, patterns []*regexp.Regexp) map[string]any {
	if data == nil {
		return nil
	}
	result := make(map[string]any, len(data))
	for key, value := range data {
		if matchesAny(key, patterns) {
			result[key] = redactedValue
			continue
		}
		result[key] = redactValue(value, patterns)
	}
	return result
}

// redactValue redacts a single value sitting under a non-matching key.
// map[string]any recurses directly; any other string-keyed map, such as
// a map[string]string a caller put in params, is copied into a
// map[string]any so its keys go through the same matching. Everything
// else passes through untouched.
func redactValue(value any, patterns []*regexp.Regexp) any {
	if nested, ok := value.(map[string]any); ok {
		return redactMap(nested, patterns)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return value
	}
	converted := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		converted[iter.Key().String()] = iter.Value().Interface()
	}
	return redactMap(converted, patterns)
}

// redactStringMap is redactMap for flat string maps (the environment
// sub-map). String values cannot nest, so no recursion is involved.
func redactStringMap(data map[string]string, patterns []*regexp.Regexp) map[string]string {
	if data == nil {
		return nil
	}
	result := make(map[string]string, len(data))
	for key, value := range data {
		if matchesAny(key, patterns) {
			result[key] = redactedValue
			continue
		}
		result[key] = value
	}
	return result
}

// matchesAny short-circuits on the first matching pattern; pattern order
// affects only performance, never outcome.
func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
