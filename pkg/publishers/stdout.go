package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// stdoutPublisher prints the payload instead of sending it.
type stdoutPublisher struct {
	id     string
	format string
	out    io.Writer
	log    Logger
}

func newStdoutPublisher(cfg PublisherConfig, log Logger) Publisher {
	p := NewWriterPublisher(cfg.ID, os.Stdout, log).(*stdoutPublisher)
	if cfg.Format != "" {
		p.format = cfg.Format
	}
	return p
}

// NewWriterPublisher returns a publisher writing the Slack payload as
// indented JSON to out.
func NewWriterPublisher(id string, out io.Writer, log Logger) Publisher {
	return &stdoutPublisher{id: id, format: FormatSlack, out: out, log: ensureLogger(log)}
}

func (p *stdoutPublisher) ID() string   { return p.id }
func (p *stdoutPublisher) Type() string { return TypeStdout }

func (p *stdoutPublisher) Publish(_ context.Context, evt Event) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(evt.Body(p.format)); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	p.log.DebugObj("payload written", "publisher_stdout_delivery", map[string]any{
		"publisher_id": p.id,
		"format":       p.format,
	})
	return nil
}
