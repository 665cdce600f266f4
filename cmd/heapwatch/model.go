package main

import (
	"fmt"
	"math/rand"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/memkit/memkit/heap"
	"github.com/memkit/memkit/internal/arena"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	binStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// liveBlock records one allocation made from the TUI.
type liveBlock struct {
	addr, size, align uint64
}

type model struct {
	arena  *arena.Arena
	heap   *heap.Heap
	live   []liveBlock
	rng    *rand.Rand
	status string
}

func newModel(size int) (*model, error) {
	a, err := arena.New(0, size)
	if err != nil {
		return nil, err
	}
	h, err := heap.New(a, a.Base(), a.End())
	if err != nil {
		return nil, err
	}
	return &model{
		arena:  a,
		heap:   h,
		rng:    rand.New(rand.NewSource(1)),
		status: "a: allocate   f: free last   F: free random   q: quit",
	}, nil
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a":
		size := uint64(1 + m.rng.Intn(4096))
		align := uint64(1) << m.rng.Intn(7)
		addr, err := m.heap.Allocate(size, align)
		if err != nil {
			m.status = errStyle.Render(err.Error())
			break
		}
		m.live = append(m.live, liveBlock{addr, size, align})
		m.status = fmt.Sprintf("allocated %d bytes (align %d) at 0x%x", size, align, addr)
	case "f":
		m.freeAt(len(m.live) - 1)
	case "F":
		if len(m.live) > 0 {
			m.freeAt(m.rng.Intn(len(m.live)))
		}
	}
	return m, nil
}

func (m *model) freeAt(i int) {
	if i < 0 || len(m.live) == 0 {
		m.status = dimStyle.Render("nothing to free")
		return
	}
	b := m.live[i]
	m.heap.Deallocate(b.addr, b.size, b.align)
	m.live = append(m.live[:i], m.live[i+1:]...)
	m.status = fmt.Sprintf("freed 0x%x (%d bytes)", b.addr, b.size)
}

func (m *model) View() string {
	var sb strings.Builder
	start, end := m.heap.Region()
	sb.WriteString(titleStyle.Render(fmt.Sprintf("heapwatch: region [0x%x, 0x%x)", start, end)))
	sb.WriteString("\n\n")

	counts := m.heap.BinCounts()
	for i, count := range counts {
		if count == 0 {
			continue
		}
		label := binStyle.Render(fmt.Sprintf("bin %2d %10d B", i, uint64(1)<<(i+3)))
		sb.WriteString(fmt.Sprintf("%s %s %d\n", label, barStyle.Render(strings.Repeat("█", min(count, 40))), count))
	}

	st := m.heap.Stats()
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf(
		"live blocks: %d   free: %d B   allocs: %d (%d failed)   splits: %d   merges: %d",
		len(m.live), m.heap.FreeBytes(), st.AllocCalls, st.FailedAllocs, st.Splits, st.Merges)))
	sb.WriteString("\n\n")
	sb.WriteString(m.status)
	sb.WriteString("\n")
	return sb.String()
}
