package config

import "strings"

// Toggle is a boolean that accepts the permissive spellings used by the
// GCREDSTASH_* environment: "1", "t", "true", "y" and "yes" (any case) are
// true, everything else is false.
//
// It implements encoding.TextUnmarshaler for caarlos0/env and flag.Value for
// the command line.
type Toggle bool

func parseToggle(s string) Toggle {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes":
		return true
	default:
		return false
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Toggle) UnmarshalText(text []byte) error {
	*t = parseToggle(string(text))
	return nil
}

// Set implements flag.Value.
func (t *Toggle) Set(s string) error {
	*t = parseToggle(s)
	return nil
}

// String implements flag.Value.
func (t *Toggle) String() string {
	if t != nil && *t {
		return "true"
	}
	return "false"
}

// IsBoolFlag lets the flag be passed without a value (-rest-api).
func (t *Toggle) IsBoolFlag() bool {
	return true
}
