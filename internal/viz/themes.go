package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme is the palette of one appearance.
type Theme struct {
	Name       string
	Primary    lipgloss.Color // ion exhaust, today
	Secondary  lipgloss.Color // click bursts, month labels
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Weekend    lipgloss.Color
	Filler     lipgloss.Color
	Warning    lipgloss.Color
}

var (
	ThemeDark = Theme{
		Name:       "dark",
		Primary:    lipgloss.Color("#00e5ff"),
		Secondary:  lipgloss.Color("#ff4fd8"),
		Accent:     lipgloss.Color("#ffd166"),
		Background: lipgloss.Color("#05060f"),
		Text:       lipgloss.Color("#e6f1ff"),
		Muted:      lipgloss.Color("#5a6480"),
		Weekend:    lipgloss.Color("#8ab4ff"),
		Filler:     lipgloss.Color("#2a3048"),
		Warning:    lipgloss.Color("#ff8800"),
	}

	ThemeLight = Theme{
		Name:       "light",
		Primary:    lipgloss.Color("#0077be"),
		Secondary:  lipgloss.Color("#c2185b"),
		Accent:     lipgloss.Color("#b8860b"),
		Background: lipgloss.Color("#f5f7fb"),
		Text:       lipgloss.Color("#101522"),
		Muted:      lipgloss.Color("#7a8399"),
		Weekend:    lipgloss.Color("#3f51b5"),
		Filler:     lipgloss.Color("#c9cfdc"),
		Warning:    lipgloss.Color("#d35400"),
	}

	Themes = []Theme{ThemeDark, ThemeLight}
)

// GetTheme returns a theme by name, dark when unknown.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDark
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// MaxGlow is the glow radius at which the cursor color is fully saturated.
const MaxGlow = 900.0

// GlowColor blends the background towards Primary in proportion to the
// glow radius.
func (t Theme) GlowColor(glow float64) lipgloss.Color {
	f := glow / MaxGlow
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return blend(t.Background, t.Primary, f)
}

// Chroma shifts Secondary towards Primary by a scroll distortion in
// [0, 12].
func (t Theme) Chroma(dist float64) lipgloss.Color {
	return blend(t.Primary, t.Secondary, dist/12)
}

func blend(a, b lipgloss.Color, f float64) lipgloss.Color {
	ca, err := colorful.Hex(string(a))
	if err != nil {
		return b
	}
	cb, err := colorful.Hex(string(b))
	if err != nil {
		return a
	}
	return lipgloss.Color(ca.BlendLab(cb, f).Clamped().Hex())
}
