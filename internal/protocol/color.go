package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRGB accepts #rrggbb, rrggbb or r,g,b with decimal components.
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, ","); len(parts) == 3 {
		var c [3]uint8
		for i, part := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
			if err != nil {
				return RGB{}, fmt.Errorf("invalid color component %q: must be 0-255", part)
			}
			c[i] = uint8(n)
		}
		return RGB{R: c[0], G: c[1], B: c[2]}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q (expected #rrggbb or r,g,b)", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q (expected #rrggbb or r,g,b)", s)
	}
	return RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
