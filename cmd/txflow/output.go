package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	txflow "github.com/branched-services/go-txflow"
)

var (
	colorGreen = color.New(color.FgGreen).SprintFunc()
	colorRed   = color.New(color.FgRed).SprintFunc()
	colorBold  = color.New(color.Bold).SprintFunc()
	dimColor   = color.New(color.Faint)
)

func printStep(w io.Writer, format string, args ...any) {
	dimColor.Fprintf(w, format+"\n", args...)
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", colorGreen("✓"), fmt.Sprintf(format, args...))
}

func printField(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %-10s %v\n", label+":", value)
}

func printConfirmed(w io.Writer, c *txflow.ConfirmedTransaction) {
	printField(w, "TX Hash", colorBold(c.Hash.Hex()))
	printField(w, "Block", c.BlockNumber)
	printField(w, "Gas used", c.GasUsed)
	printField(w, "Status", c.Status)
}

// printError writes err and, for ambiguous outcomes, what to do next.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", colorRed("✗"), err)
	switch txflow.FateOf(err) {
	case txflow.FateUnknown:
		fmt.Fprintln(w, "  The transaction was broadcast and may still be mined; check it before resubmitting.")
	case txflow.FateNotSent:
		fmt.Fprintln(w, "  Nothing was sent to the network.")
	}
}
