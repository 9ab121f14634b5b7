package ui

import (
	"fmt"
	"io"
)

// UI is the minimal output surface used by non-interactive commands.
type UI interface {
	Reply(text string)
	Notice(msg string)
}

// Console writes plain text, one block per reply.
type Console struct {
	Out io.Writer
}

func (c Console) Reply(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c Console) Notice(msg string) {
	fmt.Fprintln(c.Out, "* "+msg)
}

// SilentUI discards everything; used in tests.
type SilentUI struct{}

func (s SilentUI) Reply(text string) {}
func (s SilentUI) Notice(msg string) {}
