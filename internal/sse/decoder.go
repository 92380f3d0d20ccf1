package sse

import (
	"bytes"
	"strconv"
	"strings"
)

// Event is one dispatched server-sent event.
type Event struct {
	Type string // "message" when the record had no event field
	ID   string
	Data string
}

// Decoder turns a text/event-stream byte stream into events. Bytes may be fed
// in arbitrary pieces; records are dispatched once their terminating blank
// line has been seen. A Decoder is not safe for concurrent use.
type Decoder struct {
	onEvent func(Event)

	buf      []byte
	started  bool
	finished bool

	eventType string
	lastID    string
	data      strings.Builder
	hasData   bool
	retry     int
}

func NewDecoder(onEvent func(Event)) *Decoder {
	return &Decoder{onEvent: onEvent, retry: -1}
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// Feed appends p to the pending input and dispatches every complete record.
func (d *Decoder) Feed(p []byte) {
	if d.finished || len(p) == 0 {
		return
	}
	d.buf = append(d.buf, p...)

	if !d.started {
		if len(d.buf) < len(bom) && bytes.HasPrefix(bom, d.buf) {
			return // might still be a BOM
		}
		d.buf = bytes.TrimPrefix(d.buf, bom)
		d.started = true
	}

	d.drain()
}

// Close marks the end of the stream. A record without a terminating blank
// line is discarded.
func (d *Decoder) Close() {
	if d.finished {
		return
	}
	// A lone trailing CR is still a line terminator.
	if n := len(d.buf); n > 0 && d.buf[n-1] == '\r' {
		d.processLine(d.buf[:n-1])
	}
	d.buf = nil
	d.resetRecord()
	d.finished = true
}

// Finished reports whether Close has been called.
func (d *Decoder) Finished() bool {
	return d.finished
}

// Retry returns the last reconnection time in milliseconds announced by the
// stream, or -1 if none was seen.
func (d *Decoder) Retry() int {
	return d.retry
}

func (d *Decoder) drain() {
	start := 0
	for i := 0; i < len(d.buf); i++ {
		switch d.buf[i] {
		case '\n':
			d.processLine(d.buf[start:i])
			start = i + 1
		case '\r':
			if i+1 == len(d.buf) {
				// Wait for the next chunk to tell CR from CRLF.
				d.compact(start)
				return
			}
			d.processLine(d.buf[start:i])
			if d.buf[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	d.compact(start)
}

func (d *Decoder) compact(start int) {
	if start == 0 {
		return
	}
	n := copy(d.buf, d.buf[start:])
	d.buf = d.buf[:n]
}

func (d *Decoder) processLine(line []byte) {
	if len(line) == 0 {
		d.dispatch()
		return
	}
	if line[0] == ':' {
		return // comment
	}

	field, value := string(line), ""
	if i := bytes.IndexByte(line, ':'); i >= 0 {
		field = string(line[:i])
		value = strings.TrimPrefix(string(line[i+1:]), " ")
	}

	switch field {
	case "event":
		d.eventType = value
	case "data":
		if d.hasData {
			d.data.WriteByte('\n')
		}
		d.data.WriteString(value)
		d.hasData = true
	case "id":
		if !strings.ContainsRune(value, 0) {
			d.lastID = value
		}
	case "retry":
		if n, err := strconv.Atoi(value); err == nil && n >= 0 && isDigits(value) {
			d.retry = n
		}
	}
}

func (d *Decoder) dispatch() {
	if !d.hasData {
		d.eventType = ""
		return
	}
	evt := Event{
		Type: d.eventType,
		ID:   d.lastID,
		Data: d.data.String(),
	}
	if evt.Type == "" {
		evt.Type = "message"
	}
	d.resetRecord()
	if d.onEvent != nil {
		d.onEvent(evt)
	}
}

func (d *Decoder) resetRecord() {
	d.eventType = ""
	d.data.Reset()
	d.hasData = false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
