package workers

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hetulpatel/LiveEdge/internal/models"
)

// Printer writes a one-line summary of every scan event to w.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Handle(ctx context.Context, event *models.ScanEvent) error {
	if event == nil {
		return fmt.Errorf("nil scan event")
	}
	line := summarize(event)
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.w, line)
	return err
}
