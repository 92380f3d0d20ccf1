package sse

import (
	"fmt"
	"io"
	"strings"
)

// WriteEvent encodes e in text/event-stream framing. Multi-line data is
// written as one data field per line.
func WriteEvent(w io.Writer, e Event) error {
	var sb strings.Builder
	if e.Type != "" && e.Type != "message" {
		fmt.Fprintf(&sb, "event: %s\n", e.Type)
	}
	if e.ID != "" {
		fmt.Fprintf(&sb, "id: %s\n", e.ID)
	}
	data := strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(e.Data)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&sb, "data: %s\n", line)
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
