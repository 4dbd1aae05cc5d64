package schema

import "strings"

// Color is a named background color from the note palette.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorPink   Color = "pink"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorWhite  Color = "white"
	ColorGray   Color = "gray"
)

// DefaultColor is used for new notes and for normalizing unknown colors.
const DefaultColor = ColorYellow

// paletteOrder is the display order of the palette.
var paletteOrder = []Color{
	ColorYellow,
	ColorGreen,
	ColorPink,
	ColorBlue,
	ColorPurple,
	ColorWhite,
	ColorGray,
}

var paletteHex = map[Color]string{
	ColorYellow: "#FEF49C",
	ColorGreen:  "#CDE99B",
	ColorPink:   "#F6C1CE",
	ColorBlue:   "#BBDFF2",
	ColorPurple: "#D9C7E8",
	ColorWhite:  "#F5F5F5",
	ColorGray:   "#C8C8C8",
}

// Valid reports whether c is a known palette color.
func (c Color) Valid() bool {
	_, ok := paletteHex[c]
	return ok
}

// Hex returns the hex value of the color, or the default color's hex
// if the color is unknown.
func (c Color) Hex() string {
	if hex, ok := paletteHex[c]; ok {
		return hex
	}
	return paletteHex[DefaultColor]
}

// NormalizeColor maps an arbitrary color string to a palette color.
// Named colors are matched case-insensitively, hex values are matched
// against the palette, and anything else falls back to the default.
func NormalizeColor(s string) Color {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	if strings.HasPrefix(string(c), "#") {
		hex := strings.ToUpper(string(c))
		for name, h := range paletteHex {
			if h == hex {
				return name
			}
		}
	}
	return DefaultColor
}

// Palette returns the palette colors in display order.
func Palette() []Color {
	out := make([]Color, len(paletteOrder))
	copy(out, paletteOrder)
	return out
}
