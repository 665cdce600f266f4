package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/memkit/memkit/console"
	"github.com/memkit/memkit/heap"
	"github.com/memkit/memkit/internal/arena"
	"github.com/memkit/memkit/shell"
)

func init() {
	rootCmd.AddCommand(newShellCmd())
}

// stdio joins stdin and stdout into one stream for the console.
type stdio struct {
	io.Reader
	io.Writer
}

func newShellCmd() *cobra.Command {
	var (
		size   int
		prompt string
	)
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive shell with allocator commands",
		Long: `The shell command builds a heap over a fresh region and drops into a
line-oriented shell. Type "help" for the available commands.

Example:
  memctl shell --size 65536`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(size, prompt)
		},
	}
	cmd.Flags().IntVar(&size, "size", 1<<20, "Region size in bytes")
	cmd.Flags().StringVar(&prompt, "prompt", "memkit> ", "Shell prompt")
	return cmd
}

func runShell(size int, prompt string) error {
	a, err := arena.Map(0, size)
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := heap.New(a, a.Base(), a.End())
	if err != nil {
		return err
	}

	con := console.New(stdio{Reader: os.Stdin, Writer: os.Stdout})
	return shell.New(con, prompt, heap.NewLocked(h)).Run()
}
