package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Checklist prints one numbered line per check out of a known total.
type Checklist struct {
	out    io.Writer
	total  int
	done   int
	failed int
	mu     sync.Mutex
}

// NewChecklist creates a checklist of total checks.
func NewChecklist(out io.Writer, total int) *Checklist {
	return &Checklist{out: out, total: total}
}

// Pass records a passing check.
func (c *Checklist) Pass(label, detail string) {
	c.line(label, passStyle.Render("ok"), detail)
}

// Fail records a failing check.
func (c *Checklist) Fail(label string, err error) {
	c.mu.Lock()
	c.failed++
	c.mu.Unlock()
	c.line(label, failStyle.Render("FAILED"), err.Error())
}

// Failed returns the number of failed checks so far.
func (c *Checklist) Failed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

func (c *Checklist) line(label, status, detail string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	if detail != "" {
		detail = ": " + detail
	}
	_, _ = fmt.Fprintf(c.out, "[%d/%d] %s %s%s\n", c.done, c.total, label, status, detail)
}
