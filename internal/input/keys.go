package input

import (
	"fmt"
	"strings"
)

// ParseFireKey maps a config value to the byte the terminal sends in raw mode.
func ParseFireKey(s string) (byte, error) {
	switch strings.ToLower(s) {
	case "", "space", " ":
		return DefaultFireKey, nil
	case "enter", "return":
		return '\r', nil
	case "tab":
		return '\t', nil
	}
	if len(s) != 1 || s[0] < '!' || s[0] > '~' {
		return 0, fmt.Errorf("fire key must be space, enter, tab or a single printable ASCII character, got %q", s)
	}
	return s[0], nil
}

// KeyName is the label shown to the player for a fire key.
func KeyName(b byte) string {
	switch b {
	case ' ':
		return "SPACEBAR"
	case '\r':
		return "ENTER"
	case '\t':
		return "TAB"
	default:
		return strings.ToUpper(string(b))
	}
}
