package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// loaderColors tints loader names in tables; other loaders are white.
var loaderColors = map[string]lipgloss.Color{
	"fabric":   lipgloss.Color("180"),
	"forge":    lipgloss.Color("110"),
	"neoforge": lipgloss.Color("208"),
	"quilt":    lipgloss.Color("141"),
	"iris":     lipgloss.Color("75"),
	"optifine": lipgloss.Color("167"),
}

func loaderStyle(loader string) lipgloss.Style {
	c, ok := loaderColors[loader]
	if !ok {
		c = colorWhite
	}
	return lipgloss.NewStyle().Foreground(c)
}

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleLink    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// statusKind selects the icon and colour of a status line.
type statusKind int

const (
	statusSuccess statusKind = iota
	statusError
	statusWarning
	statusInfo
)

var statusIcons = [...]struct {
	icon  string
	style lipgloss.Style
}{
	statusSuccess: {"✓", lipgloss.NewStyle().Foreground(colorGreen)},
	statusError:   {"✗", lipgloss.NewStyle().Foreground(colorRed)},
	statusWarning: {"!", lipgloss.NewStyle().Foreground(colorYellow)},
	statusInfo:    {"›", lipgloss.NewStyle().Foreground(colorGray)},
}

// =============================================================================
// Status Output
// =============================================================================

// statusOut receives status lines. Standard output is reserved for command
// results so feeds can be piped.
var statusOut io.Writer = os.Stderr

func printStatus(kind statusKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarning {
		msg = StyleWarning.Render(msg)
	}
	s := statusIcons[kind]
	fmt.Fprintln(statusOut, s.style.Render(s.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { printStatus(statusSuccess, format, args...) }
func printError(format string, args ...any)   { printStatus(statusError, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarning, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// statsLine summarizes a build, e.g. "87 mods · 1204 records · 2 failed · cached".
func statsLine(mods, records, failed int, cached bool) string {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d mods", mods)),
		StyleDim.Render(fmt.Sprintf("%d records", records)),
	}
	if failed > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorRed).Render(fmt.Sprintf("%d failed", failed)))
	}
	if cached {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGreen).Render("cached"))
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGray).Render("fresh"))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func printStats(mods, records, failed int, cached bool) {
	fmt.Fprintln(statusOut, "  "+statsLine(mods, records, failed, cached))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
