package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dotcommander/glsllint/internal/output"
	"github.com/dotcommander/glsllint/internal/shader"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the shader file naming conventions",
	Long: `List the file naming conventions glsllint recognizes, in matching order, with
the file name each stage gets under every convention.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printStages(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(stagesCmd)
}

func printStages(w io.Writer) {
	header := lipgloss.NewStyle()
	if output.IsTerminal(w) {
		header = header.Bold(true).Foreground(lipgloss.Color("12"))
	}

	const width = 14
	cols := []string{pad("convention", width)}
	for _, s := range shader.Stages {
		cols = append(cols, pad(s.Char4, width))
	}
	fmt.Fprintln(w, header.Render(strings.TrimRight(strings.Join(cols, ""), " ")))

	for _, c := range shader.Conventions() {
		cells := []string{pad(c.Name, width)}
		for _, s := range shader.Stages {
			name, ok := c.FileName("foo.", s)
			if !ok {
				name = "-"
			}
			cells = append(cells, pad(name, width))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, ""), " "))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
