// Package shell implements a line-oriented command interpreter over a
// console. Input is edited byte by byte: backspace and DEL erase, a BEL is
// rung for bytes the 128-byte line buffer cannot take, and a line is split
// into at most 64 space-separated arguments.
//
// Besides echo, the shell exposes the allocator: alloc, free, bins and
// stats operate on the heap the shell was constructed with.
package shell

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/memkit/memkit/console"
	"github.com/memkit/memkit/heap"
)

const (
	// maxLine is the line buffer capacity in bytes.
	maxLine = 128

	// maxArgs is the argument capacity of one command.
	maxArgs = 64
)

const (
	bell      = 0x07
	backspace = 0x08
	del       = 0x7F
)

var (
	errTooManyArgs = errors.New("shell: too many arguments")

	// errExit signals a clean stop from the exit builtin.
	errExit = errors.New("shell: exit")
)

// Shell reads commands from a console and executes them.
type Shell struct {
	con    *console.Console
	prompt string
	heap   *heap.LockedHeap
}

// New returns a shell reading from con. h may be nil; the memory commands
// then report that no allocator is available.
func New(con *console.Console, prompt string, h *heap.LockedHeap) *Shell {
	return &Shell{con: con, prompt: prompt, heap: h}
}

// Run loops reading and executing commands until the input ends or the
// exit builtin runs.
func (s *Shell) Run() error {
	for {
		s.con.WriteString(s.prompt)
		line, err := s.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		args, err := parse(line)
		if err != nil {
			s.printf("error: too many arguments\n")
			continue
		}
		if len(args) == 0 {
			continue
		}

		if err := s.execute(args); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

// readLine reads one edited line, echoing accepted bytes back.
func (s *Shell) readLine() (string, error) {
	buf := make([]byte, 0, maxLine)
	for {
		b, err := s.con.ReadByte()
		if err != nil {
			return "", err
		}
		switch {
		case b == '\n' || b == '\r':
			s.con.WriteString("\n")
			return string(buf), nil
		case b == backspace || b == del:
			if len(buf) == 0 {
				s.con.WriteByte(bell)
			} else {
				buf = buf[:len(buf)-1]
				s.con.WriteString("\b \b")
			}
		case b < 0x20 || b > 0x7E:
			// Not printable.
			s.con.WriteByte(bell)
		case len(buf) == maxLine:
			s.printf("\ninput full!\n")
			s.con.WriteByte(bell)
		default:
			buf = append(buf, b)
			s.con.WriteByte(b)
		}
	}
}

// parse splits a line into arguments, bounded by maxArgs.
func parse(line string) ([]string, error) {
	args := strings.Fields(line)
	if len(args) > maxArgs {
		return nil, errTooManyArgs
	}
	return args, nil
}

func (s *Shell) execute(args []string) error {
	switch args[0] {
	case "echo":
		s.printf("%s\n", strings.Join(args[1:], " "))
	case "alloc":
		s.cmdAlloc(args[1:])
	case "free":
		s.cmdFree(args[1:])
	case "bins":
		s.cmdBins()
	case "stats":
		s.cmdStats()
	case "help":
		s.cmdHelp()
	case "exit":
		return errExit
	default:
		s.printf("unknown command: %s\n", args[0])
	}
	return nil
}

func (s *Shell) cmdAlloc(args []string) {
	if s.heap == nil {
		s.printf("error: no allocator available\n")
		return
	}
	if len(args) != 2 {
		s.printf("usage: alloc <size> <align>\n")
		return
	}
	size, err1 := strconv.ParseUint(args[0], 0, 64)
	align, err2 := strconv.ParseUint(args[1], 0, 64)
	if err1 != nil || err2 != nil {
		s.printf("error: size and align must be unsigned integers\n")
		return
	}
	addr, err := s.heap.Allocate(size, align)
	if err != nil {
		s.printf("error: %v\n", err)
		return
	}
	s.printf("0x%x\n", addr)
}

func (s *Shell) cmdFree(args []string) {
	if s.heap == nil {
		s.printf("error: no allocator available\n")
		return
	}
	if len(args) != 3 {
		s.printf("usage: free <addr> <size> <align>\n")
		return
	}
	addr, err1 := strconv.ParseUint(args[0], 0, 64)
	size, err2 := strconv.ParseUint(args[1], 0, 64)
	align, err3 := strconv.ParseUint(args[2], 0, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		s.printf("error: addr, size and align must be unsigned integers\n")
		return
	}
	s.heap.Deallocate(addr, size, align)
	s.printf("freed 0x%x\n", addr)
}

func (s *Shell) cmdBins() {
	if s.heap == nil {
		s.printf("error: no allocator available\n")
		return
	}
	s.printf("%s", s.heap.String())
}

func (s *Shell) cmdStats() {
	if s.heap == nil {
		s.printf("error: no allocator available\n")
		return
	}
	st := s.heap.Stats()
	s.printf("allocs: %d (%d failed)\n", st.AllocCalls, st.FailedAllocs)
	s.printf("frees: %d\n", st.FreeCalls)
	s.printf("splits: %d, merges: %d\n", st.Splits, st.Merges)
	s.printf("bytes: %d allocated, %d freed, %d free now\n",
		st.BytesAllocated, st.BytesFreed, s.heap.FreeBytes())
}

func (s *Shell) cmdHelp() {
	s.printf("commands:\n")
	s.printf("  echo <args...>            print arguments\n")
	s.printf("  alloc <size> <align>      allocate a block\n")
	s.printf("  free <addr> <size> <align> return a block\n")
	s.printf("  bins                      dump free lists\n")
	s.printf("  stats                     allocator counters\n")
	s.printf("  exit                      leave the shell\n")
}

// printf writes formatted output to the console, best effort.
func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.con, format, args...)
}
