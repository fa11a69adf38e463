package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

var (
	colorCyan  = lipgloss.Color("36")  // primary
	colorGreen = lipgloss.Color("35")  // success, cached
	colorRed   = lipgloss.Color("167") // errors
	colorBlue  = lipgloss.Color("75")  // links, commands
	colorWhite = lipgloss.Color("255") // values
	colorGray  = lipgloss.Color("245") // keys, info
	colorDim   = lipgloss.Color("240") // muted
)

var (
	// StyleTitle renders board and character names above their details.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight marks names inside status messages.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink renders image URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	StyleDim   = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconSwatch  = "■"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}

// swatch renders a figure color as a colored block followed by its hex code.
// Empty or malformed colors render as the plain text.
func swatch(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(iconSwatch) + " " + hex
}

// printChartStats prints one render's summary, e.g.
// "3 people · 14 marks · ft · cached".
func printChartStats(people, marks int, unit string, cached bool) {
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d people", people)),
		StyleDim.Render(fmt.Sprintf("%d marks", marks)),
		StyleDim.Render(unit),
		statusStyle.Render(status),
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}
