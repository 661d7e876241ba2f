package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
	mutedColor   = color.New(color.Faint)
)

// classificationColor maps a code to its severity color
func classificationColor(code string) *color.Color {
	switch code {
	case "3":
		return color.New(color.FgRed, color.Bold)
	case "5":
		return color.New(color.FgRed)
	case "2", "7":
		return color.New(color.FgYellow)
	case "1", "6":
		return color.New(color.FgGreen)
	default:
		return mutedColor
	}
}

func disableColor() {
	color.NoColor = true
}

func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "✗ %s\n", err)
}

func printWarning(w io.Writer, format string, args ...any) {
	warningColor.Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, "ℹ %s\n", fmt.Sprintf(format, args...))
}

func printHeading(w io.Writer, format string, args ...any) {
	boldColor.Fprintln(w, fmt.Sprintf(format, args...))
}

// printList prints a labeled list, or nothing when values is empty
func printList(w io.Writer, label string, values []string) {
	if len(values) == 0 {
		return
	}
	printWarning(w, "%s (%d)", label, len(values))
	for _, v := range values {
		fmt.Fprintf(w, "    %s\n", v)
	}
}
