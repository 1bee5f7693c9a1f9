package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Styles are the lipgloss styles of one theme.
type Styles struct {
	Theme Theme

	Day        lipgloss.Style
	Weekend    lipgloss.Style
	Today      lipgloss.Style
	Focus      lipgloss.Style
	Filler     lipgloss.Style
	MonthLabel lipgloss.Style
	YearTitle  lipgloss.Style
	YearMeta   lipgloss.Style
	Particle   lipgloss.Style
	Toast      lipgloss.Style
	HUD        lipgloss.Style
	HUDValue   lipgloss.Style
	KeyHint    lipgloss.Style
	Veil       lipgloss.Style
	Panel      lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Theme:   t,
		Day:     lipgloss.NewStyle().Foreground(t.Text),
		Weekend: lipgloss.NewStyle().Foreground(t.Weekend),
		Today: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Background).
			Background(t.Primary),
		Focus: lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(t.Primary),
		Filler:     lipgloss.NewStyle().Foreground(t.Filler),
		MonthLabel: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		YearTitle:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		YearMeta:   lipgloss.NewStyle().Foreground(t.Muted),
		Particle:   lipgloss.NewStyle().Foreground(t.Primary),
		Toast: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Foreground(t.Text).
			Padding(0, 2),
		HUD:      lipgloss.NewStyle().Foreground(t.Muted),
		HUDValue: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		KeyHint:  lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Veil:     lipgloss.NewStyle().Foreground(t.Muted).Background(t.Background),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(1, 2),
	}
}

// GradientText colors each rune of text along a Lab blend from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	cs, err1 := colorful.Hex(string(start))
	ce, err2 := colorful.Hex(string(end))
	if err1 != nil || err2 != nil {
		return text
	}

	var b strings.Builder
	for i, r := range runes {
		f := 0.0
		if len(runes) > 1 {
			f = float64(i) / float64(len(runes)-1)
		}
		c := lipgloss.Color(cs.BlendLab(ce, f).Clamped().Hex())
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render(string(r)))
	}
	return b.String()
}

// ProgressBar renders a bar of width cells filled to percent (0..1).
func (s Styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return GradientText(strings.Repeat("█", filled), s.Theme.Secondary, s.Theme.Primary) +
		s.Filler.Render(strings.Repeat("░", width-filled))
}

// Separator is a muted rule with a centered diamond.
func (s Styles) Separator(width int) string {
	if width < 7 {
		return s.HUD.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return s.HUD.Render(left + " ◆ " + right)
}

// Spinner returns one frame of a braille spinner.
func Spinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}
