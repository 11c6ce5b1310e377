package commands

import "github.com/fatih/color"

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgYellow, color.Bold)
	infoStyle    = color.New(color.FgCyan)
)
