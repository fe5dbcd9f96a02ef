package cli

import "github.com/fatih/color"

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	headingStyle = color.New(color.FgCyan, color.Bold)
	okStyle      = color.New(color.FgGreen)
	warnStyle    = color.New(color.FgYellow)
	dimStyle     = color.New(color.Faint)
)
