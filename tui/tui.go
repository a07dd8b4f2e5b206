package tui

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/log/v2"

	"github.com/Gaurav-Gosain/reelscout/favorites"
	"github.com/Gaurav-Gosain/reelscout/source"
)

// Tokyo Night palette, with the violet accent used for favorites.
var (
	tnFg      = lipgloss.Color("#a9b1d6")
	tnBlue    = lipgloss.Color("#7aa2f7")
	tnPurple  = lipgloss.Color("#bb9af7")
	tnViolet  = lipgloss.Color("#7C3AED")
	tnCyan    = lipgloss.Color("#7dcfff")
	tnGreen   = lipgloss.Color("#9ece6a")
	tnYellow  = lipgloss.Color("#e0af68")
	tnComment = lipgloss.Color("#565f89")
	tnDark    = lipgloss.Color("#1a1b26")
	tnSurface = lipgloss.Color("#292e42")
	tnGutter  = lipgloss.Color("#3b4261")

	logoStyle = lipgloss.NewStyle().
			Foreground(tnDark).
			Background(tnBlue).
			Bold(true).
			Padding(0, 1)

	favLogoStyle = lipgloss.NewStyle().
			Foreground(tnDark).
			Background(tnPurple).
			Bold(true).
			Padding(0, 1)

	countStyle  = lipgloss.NewStyle().Foreground(tnCyan).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(tnComment)
	subtleStyle = lipgloss.NewStyle().Foreground(tnGutter)

	selectedGutter = lipgloss.NewStyle().Foreground(tnBlue).SetString("│")
	normalGutter   = lipgloss.NewStyle().Foreground(tnGutter).SetString(" ")

	selectedTitleStyle = lipgloss.NewStyle().Foreground(tnBlue).Bold(true)
	normalTitleStyle   = lipgloss.NewStyle().Foreground(tnFg)
	selectedMetaStyle  = lipgloss.NewStyle().Foreground(tnCyan)
	normalMetaStyle    = lipgloss.NewStyle().Foreground(tnComment)

	heartStyle    = lipgloss.NewStyle().Foreground(tnViolet).Bold(true)
	posterStyle   = lipgloss.NewStyle().Foreground(tnGreen)
	noPosterStyle = lipgloss.NewStyle().Foreground(tnYellow).Italic(true)
	messageStyle  = lipgloss.NewStyle().Foreground(tnFg).Background(tnSurface).Padding(0, 2)
	promptStyle   = lipgloss.NewStyle().Foreground(tnBlue)

	barNoteFg    = lipgloss.NewStyle().Foreground(tnFg).Background(tnDark)
	barHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5")).Background(tnSurface)

	progressFilledStyle = lipgloss.NewStyle().Foreground(tnBlue)
	progressEmptyStyle  = lipgloss.NewStyle().Foreground(tnSurface)
)

// Options wires the TUI to its collaborators.
type Options struct {
	Executor  *source.Executor
	Favorites *favorites.Store
	Logger    *log.Logger
	// Query, when not blank, is submitted as soon as the program starts.
	Query string
}

// IsTTY reports whether f is connected to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Run starts the interactive movie finder and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := newAppModel(ctx, opts)
	prog := tea.NewProgram(m, tea.WithContext(ctx))

	// Mute Go's standard logger and stderr while the alt screen is up so
	// library output (colly, sqlite) cannot corrupt it. Restore after.
	origStdlogOutput := stdlog.Writer()
	stdlog.SetOutput(io.Discard)
	origStderr := os.Stderr
	devNull, _ := os.Open(os.DevNull)
	if devNull != nil {
		os.Stderr = devNull
	}

	_, err := prog.Run()

	os.Stderr = origStderr
	stdlog.SetOutput(origStdlogOutput)
	if devNull != nil {
		_ = devNull.Close()
	}

	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
