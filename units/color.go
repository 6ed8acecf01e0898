package units

import (
	"strings"

	"golang.org/x/text/language"
)

// ColorAuto is kept verbatim; its meaning depends on the background.
const ColorAuto = "auto"

// ThemePrefix marks a theme color reference, e.g. "theme:accent1".
const ThemePrefix = "theme:"

// NormalizeColor converts a w:val color ("ff0000", "auto") into the tree
// representation ("#FF0000", "auto"). Invalid values are rejected.
func NormalizeColor(val string) (string, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false
	}
	if strings.EqualFold(val, ColorAuto) {
		return ColorAuto, true
	}
	hex := strings.TrimPrefix(val, "#")
	if len(hex) != 6 && len(hex) != 3 {
		return "", false
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return "", false
		}
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return "#" + strings.ToUpper(hex), true
}

// DenormalizeColor converts a tree color back into a w:val value.
func DenormalizeColor(c string) string {
	if strings.EqualFold(c, ColorAuto) {
		return ColorAuto
	}
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}

// ThemeColor returns the sentinel for a w:themeColor reference.
func ThemeColor(name string) string {
	return ThemePrefix + name
}

// IsThemeColor splits a theme sentinel into its theme name.
func IsThemeColor(c string) (string, bool) {
	if strings.HasPrefix(c, ThemePrefix) {
		return strings.TrimPrefix(c, ThemePrefix), true
	}
	return "", false
}

// The fixed highlight palette of w:highlight.
var highlightColors = map[string]string{
	"black":       "#000000",
	"blue":        "#0000FF",
	"cyan":        "#00FFFF",
	"green":       "#00FF00",
	"magenta":     "#FF00FF",
	"red":         "#FF0000",
	"yellow":      "#FFFF00",
	"white":       "#FFFFFF",
	"darkBlue":    "#000080",
	"darkCyan":    "#008080",
	"darkGreen":   "#008000",
	"darkMagenta": "#800080",
	"darkRed":     "#800000",
	"darkYellow":  "#808000",
	"darkGray":    "#808080",
	"lightGray":   "#C0C0C0",
}

// HighlightToColor maps a highlight name to its color. "none" maps to
// "transparent".
func HighlightToColor(name string) (string, bool) {
	if name == "none" {
		return "transparent", true
	}
	c, ok := highlightColors[name]
	return c, ok
}

// ColorToHighlight finds the highlight name for a palette color.
func ColorToHighlight(color string) (string, bool) {
	if color == "transparent" {
		return "none", true
	}
	norm, ok := NormalizeColor(color)
	if !ok {
		return "", false
	}
	for name, c := range highlightColors {
		if c == norm {
			return name, true
		}
	}
	return "", false
}

// NormalizeLang canonicalizes a w:lang value ("en-us" becomes "en-US").
// Unparseable tags are returned unchanged with ok=false.
func NormalizeLang(val string) (string, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false
	}
	tag, err := language.Parse(val)
	if err != nil {
		return val, false
	}
	return tag.String(), true
}
