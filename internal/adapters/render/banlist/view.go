package banlist

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/bnema/session-guard/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// recentWindow is how long a ban stays highlighted.
const recentWindow = 7 * 24 * time.Hour

type RenderOptions struct {
	Now time.Time
}

// listView renders once: Init produces the text as a message, Update stores it
// and quits.
type listView struct {
	text string
}

type renderedMsg string

func (v listView) Init() tea.Cmd { return nil }

func (v listView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if text, ok := msg.(renderedMsg); ok {
		v.text = string(text)
		return v, tea.Quit
	}
	return v, nil
}

func (v listView) View() string { return v.text }

// Render formats the ban list for a terminal.
func Render(records []domain.BanRecord, opts RenderOptions) (string, error) {
	p := tea.NewProgram(listView{}, tea.WithInput(nil), tea.WithOutput(io.Discard))
	go p.Send(renderedMsg(renderView(records, opts, newStyles())))

	final, err := p.Run()
	if err != nil {
		return "", err
	}
	v, ok := final.(listView)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	return v.View(), nil
}

func renderView(records []domain.BanRecord, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Ban List"),
		s.header.Render(fmt.Sprintf("bans: %d", len(records))),
	}

	if len(records) == 0 {
		lines = append(lines, s.empty.Render("No banned players."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, record := range records {
		lines = append(lines, s.section.Render(renderRecord(record, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRecord(record domain.BanRecord, opts RenderOptions, s styles) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.player.Render(playerTitle(record)),
		field(s, "identity", identityValue(record, s)),
		field(s, "banned", bannedValue(record, opts.Now)),
		field(s, "reason", reasonValue(record, s)),
	)
}

func field(s styles, key, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, "  ", s.key.Render(key+":"), " ", value)
}

func playerTitle(record domain.BanRecord) string {
	if record.IdentityOnly() {
		return "(unknown player)"
	}
	return record.PlayerName
}

func identityValue(record domain.BanRecord, s styles) string {
	if !domain.IsKnownIdentity(record.PlatformIdentity) {
		return s.unknown.Render("unknown")
	}
	return s.detail.Render(record.PlatformIdentity)
}

func reasonValue(record domain.BanRecord, s styles) string {
	if record.Reason == "" {
		return s.unknown.Render("n/a")
	}
	return s.detail.Render(record.Reason)
}

func bannedValue(record domain.BanRecord, now time.Time) string {
	at := record.BannedAt()
	if at.IsZero() || now.IsZero() {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render(record.BanDate)
	}

	age := now.Sub(at)
	style := lipgloss.NewStyle().Foreground(ageColor(age))
	return style.Render(fmt.Sprintf("%s (%s)", record.BanDate, formatAge(age)))
}

func formatAge(age time.Duration) string {
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return plural(int(age.Minutes()), "minute") + " ago"
	case age < 24*time.Hour:
		return plural(int(age.Hours()), "hour") + " ago"
	default:
		return plural(int(math.Floor(age.Hours()/24)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// ageColor is bright for fresh bans and fades to grey over recentWindow.
func ageColor(age time.Duration) lipgloss.Color {
	return interpolateColor(recentWindow.Seconds()-age.Seconds(), 0, recentWindow.Seconds())
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// 240 is faded grey, 255 bright white on the 256 color greyscale ramp.
	interpolated := 240.0 + 15.0*normalized
	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}
