// Package sseio parses and writes Server-Sent Events. Generation
// backends are modeled as HTTP+SSE producers (pkg/clients/generation);
// the orchestrator itself re-emits SSE to callers of its streaming
// endpoints (pkg/server), so both directions share this package.
package sseio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Event is a single Server-Sent Event.
type Event struct {
	Event string
	Data  string
	ID    string
	Retry int
}

// Parser reads Events off an SSE stream.
type Parser struct {
	scanner *bufio.Scanner
	err     error
}

// NewParser wraps r as an SSE stream.
func NewParser(r io.Reader) *Parser {
	return &Parser{scanner: bufio.NewScanner(r)}
}

// Next returns the next Event, or io.EOF when the stream is exhausted.
func (p *Parser) Next() (*Event, error) {
	if p.err != nil {
		return nil, p.err
	}

	event := &Event{}
	var dataLines []string

	for p.scanner.Scan() {
		line := p.scanner.Text()

		if line == "" {
			if len(dataLines) > 0 || event.Event != "" {
				event.Data = strings.Join(dataLines, "\n")
				return event, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}

		field := line[:colonIdx]
		value := line[colonIdx+1:]
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}

		switch field {
		case "event":
			event.Event = value
		case "data":
			dataLines = append(dataLines, value)
		case "id":
			event.ID = value
		case "retry":
			var retry int
			_, _ = fmt.Sscanf(value, "%d", &retry)
			event.Retry = retry
		}
	}

	if err := p.scanner.Err(); err != nil {
		p.err = err
		return nil, err
	}

	if len(dataLines) > 0 || event.Event != "" {
		event.Data = strings.Join(dataLines, "\n")
		return event, nil
	}

	p.err = io.EOF
	return nil, io.EOF
}

// Err returns the terminal parse error, if any (never io.EOF).
func (p *Parser) Err() error {
	if p.err == io.EOF {
		return nil
	}
	return p.err
}

// Writer writes Events to an SSE response body.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w as an SSE sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEvent writes event followed by the blank line that terminates it.
func (w *Writer) WriteEvent(event Event) error {
	var buf bytes.Buffer
	if event.Event != "" {
		fmt.Fprintf(&buf, "event: %s\n", event.Event)
	}
	if event.ID != "" {
		fmt.Fprintf(&buf, "id: %s\n", event.ID)
	}
	if event.Retry > 0 {
		fmt.Fprintf(&buf, "retry: %d\n", event.Retry)
	}
	for _, line := range strings.Split(event.Data, "\n") {
		fmt.Fprintf(&buf, "data: %s\n", line)
	}
	buf.WriteString("\n")
	_, err := w.w.Write(buf.Bytes())
	return err
}

// WriteData writes a data-only event.
func (w *Writer) WriteData(data string) error {
	return w.WriteEvent(Event{Data: data})
}
