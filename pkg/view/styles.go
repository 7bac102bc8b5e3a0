// Package view renders the conversion form on a terminal and turns typed
// lines into controller events.
package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Styles groups the lipgloss styles used by the terminal view.
type Styles struct {
	Result lipgloss.Style
	Amount lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Busy   lipgloss.Style
}

// NewStyles builds styles bound to r so color support follows the real output.
func NewStyles(r *lipgloss.Renderer) Styles {
	accent := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	muted := lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#9E86D6"}

	return Styles{
		Result: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		Amount: r.NewStyle().Bold(true).Foreground(accent),
		Muted:  r.NewStyle().Foreground(muted),
		Error:  r.NewStyle().Bold(true).Foreground(errorColor),
		Busy:   r.NewStyle().Italic(true).Foreground(muted),
	}
}

var (
	hintCommand = color.New(color.FgCyan, color.Bold).SprintFunc()
	hintText    = color.New(color.Faint).SprintFunc()
	warnText    = color.New(color.FgYellow).SprintFunc()
)
