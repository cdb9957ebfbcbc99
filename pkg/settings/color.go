package settings

import (
	"strconv"

	"github.com/matzehuels/gitlanes/pkg/errors"
)

var namedColors = map[string]uint8{
	"black":          0,
	"red":            1,
	"green":          2,
	"yellow":         3,
	"blue":           4,
	"magenta":        5,
	"cyan":           6,
	"white":          7,
	"bright_black":   8,
	"bright_red":     9,
	"bright_green":   10,
	"bright_yellow":  11,
	"bright_blue":    12,
	"bright_magenta": 13,
	"bright_cyan":    14,
	"bright_white":   15,
}

// TerminalColor resolves a colour token to a 256-colour palette index.
// Tokens are the eight ANSI names, their bright_ variants, or a decimal
// number from 0 to 255.
func TerminalColor(name string) (uint8, error) {
	if c, ok := namedColors[name]; ok {
		return c, nil
	}
	n, err := strconv.ParseUint(name, 10, 8)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidColor, "unknown terminal colour %q", name)
	}
	return uint8(n), nil
}
