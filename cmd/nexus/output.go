package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/naveenspark/nexus/internal/request"
	"github.com/naveenspark/nexus/pkg/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa")).Bold(true)
	cmdStyle   = lipgloss.NewStyle().Bold(true)
	descStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
)

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	commands := []struct{ cmd, desc string }{
		{"nexus", "Open the operator console"},
		{"nexus reload", "Re-register the bot's slash commands"},
		{"nexus stats", "Print the bot's metrics"},
		{"nexus version", "Show version"},
		{"nexus help", "You are here"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  Commands:\n", titleStyle.Render("N E X U S"))
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-16s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(w, "\n  Flags:\n%s\n", fs.FlagUsages())
}

// printResult prints the terminal state of a one-shot command.
func printResult(w io.Writer, s request.State) {
	if !s.Terminal() {
		return
	}
	mark := okStyle.Render("✓")
	if s.Phase == request.Error {
		mark = errStyle.Render("✗")
	}
	fmt.Fprintf(w, "  %s %s\n", mark, s.Message)
}

func printStats(w io.Writer, entries []domain.StatEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, descStyle.Render("  no metrics reported"))
		return
	}
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Name))
	}
	for _, e := range entries {
		fmt.Fprintf(w, "  %s  %s\n", descStyle.Render(fmt.Sprintf("%-*s", width, e.Name)), cmdStyle.Render(e.Value))
	}
}
