package units

import "strings"

// Toggle is the tri-state value of an OOXML on/off property such as w:b.
type Toggle int

const (
	// ToggleAbsent means the property is not set and inherits.
	ToggleAbsent Toggle = iota
	// ToggleOn means the element is present without a false value.
	ToggleOn
	// ToggleOff means the element is present with 0/false/off.
	ToggleOff
)

func (t Toggle) String() string {
	switch t {
	case ToggleOn:
		return "on"
	case ToggleOff:
		return "off"
	default:
		return "absent"
	}
}

// Set reports whether the toggle carries an explicit value.
func (t Toggle) Set() bool {
	return t != ToggleAbsent
}

// Or returns t when it is set, otherwise fallback.
func (t Toggle) Or(fallback Toggle) Toggle {
	if t.Set() {
		return t
	}
	return fallback
}

// ParseToggle interprets the w:val attribute of a present on/off element.
// present is false when the element itself is missing.
func ParseToggle(val string, hasVal, present bool) Toggle {
	if !present {
		return ToggleAbsent
	}
	if !hasVal {
		return ToggleOn
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "0", "false", "off", "none":
		return ToggleOff
	default:
		return ToggleOn
	}
}

// ParseBool parses an on/off attribute that is not an element presence flag,
// e.g. w:done="1". Absent or unknown values yield def.
func ParseBool(val string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "on":
		return true
	case "0", "false", "off":
		return false
	default:
		return def
	}
}
