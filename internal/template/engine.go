package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/cwal/internal/colour"
	"github.com/jmylchreest/cwal/internal/palette"
)

// maxPlaceholder is the longest placeholder name considered.
const maxPlaceholder = 127

// Render replaces every {key} and {key.format} placeholder in src.
// Unknown placeholders are left as they are.
func Render(src string, p *palette.Palette) string {
	var out strings.Builder
	out.Grow(len(src) + len(src)/2)

	rest := src
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])

		end := strings.IndexByte(rest[start+1:], '}')
		if end < 0 {
			out.WriteString(rest[start:])
			break
		}
		name := rest[start+1 : start+1+end]

		if len(name) > maxPlaceholder || !validName(name) {
			out.WriteByte('{')
			rest = rest[start+1:]
			continue
		}

		if v, ok := Resolve(name, p); ok {
			out.WriteString(v)
		} else {
			out.WriteString("{" + name + "}")
		}
		rest = rest[start+end+2:]
	}

	return out.String()
}

func validName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
		default:
			return false
		}
	}
	return true
}

// Resolve returns the value of a placeholder name such as "color4.rgb".
// The format defaults to hex and "value" is an alias for hex.
func Resolve(name string, p *palette.Palette) (string, bool) {
	key, format := name, "hex"
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		key, format = name[:dot], name[dot+1:]
	}
	if format == "value" {
		format = "hex"
	}

	switch key {
	case "background":
		return Format(p.Colors[0], format, p.Alpha)
	case "foreground", "cursor":
		return Format(p.Colors[palette.Size-1], format, p.Alpha)
	case "wallpaper":
		if p.Wallpaper == "" {
			return "", false
		}
		return p.Wallpaper, true
	}

	num, ok := strings.CutPrefix(key, "color")
	if !ok || num == "" {
		return "", false
	}
	idx, err := strconv.Atoi(num)
	if err != nil || idx < 0 || idx >= palette.Size {
		return "", false
	}
	return Format(p.Colors[idx], format, p.Alpha)
}

// Format renders c in the named format.
func Format(c colour.Color, format string, alpha float64) (string, bool) {
	switch format {
	case "hex":
		return c.Hex(), true
	case "xhex":
		return fmt.Sprintf("0x%02x%02x%02x", c.R, c.G, c.B), true
	case "strip":
		return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B), true
	case "rgb":
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B), true
	case "rgba":
		return fmt.Sprintf("rgba(%d,%d,%d,%.1f)", c.R, c.G, c.B, alpha), true
	case "red":
		return strconv.Itoa(int(c.R)), true
	case "green":
		return strconv.Itoa(int(c.G)), true
	case "blue":
		return strconv.Itoa(int(c.B)), true
	case "alpha_dec":
		return fmt.Sprintf("%.1f", alpha), true
	default:
		return "", false
	}
}

// Sequences returns the OSC escape sequences that set a terminal's palette,
// foreground, background and cursor colours.
func Sequences(p *palette.Palette) string {
	var b strings.Builder
	for i, c := range p.Colors {
		fmt.Fprintf(&b, "\x1b]4;%d;%s\x1b\\", i, c.Hex())
	}

	fg := p.Foreground().Hex()
	bg := p.Background().Hex()
	for _, s := range []struct{ code, hex string }{
		{"10", fg}, {"11", bg}, {"12", fg}, {"13", fg}, {"17", fg}, {"19", bg},
		{"4;232", bg}, {"4;256", fg}, {"4;257", bg}, {"708", bg},
	} {
		fmt.Fprintf(&b, "\x1b]%s;%s\x1b\\", s.code, s.hex)
	}
	return b.String()
}
