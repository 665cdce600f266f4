package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/memkit/memkit/boot"
	"github.com/memkit/memkit/console"
)

func init() {
	rootCmd.AddCommand(newRecvCmd())
}

func newRecvCmd() *cobra.Command {
	var (
		output   string
		maxSize  int
		attempts int
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "recv <device>",
		Short: "Receive a binary image over a serial line via XMODEM",
		Long: `The recv command opens a serial device, waits for an XMODEM transfer,
and writes the received image to a file. The image length is rounded up
to the 128-byte packet size by the protocol.

Example:
  memctl recv /dev/ttyUSB0 -o kernel.img`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecv(args[0], output, maxSize, attempts, timeout)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "image.bin", "Output file")
	cmd.Flags().IntVar(&maxSize, "max-size", 1<<24, "Maximum image size in bytes")
	cmd.Flags().IntVar(&attempts, "attempts", 5, "Transfer attempts before giving up")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-read timeout")
	return cmd
}

func runRecv(device, output string, maxSize, attempts int, timeout time.Duration) error {
	dev, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open serial device: %w", err)
	}
	defer dev.Close()

	con := console.New(dev)
	con.SetReadTimeout(timeout)

	printVerbose("waiting for transfer on %s\n", device)
	dst := make([]byte, maxSize)
	n, err := boot.LoadBinary(con, dst, attempts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, dst[:n], 0o644); err != nil {
		return err
	}
	printInfo("received %d bytes -> %s\n", n, output)
	return nil
}
