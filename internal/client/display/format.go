package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"endgame/internal/server/core"
)

// PrettyPrintJSON writes v as indented JSON
func PrettyPrintJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(w, Colorize(Red, "Error formatting JSON: "+err.Error()))
		return
	}
	fmt.Fprintln(w, string(data))
}

// Indent re-indents raw JSON, returning the input unchanged if it is not JSON
func Indent(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// FormatMove describes a move, e.g. "e8d7 x Q (capture)"
func FormatMove(m *core.MoveInfo) string {
	if m == nil {
		return "-"
	}
	parts := []string{m.Move}
	if m.Captured != "" {
		parts = append(parts, "x "+m.Captured)
	}
	if m.Promoted {
		parts = append(parts, "promoted")
	}
	if m.Tier != "" {
		parts = append(parts, "("+m.Tier+")")
	}
	return strings.Join(parts, " ")
}

// FormatHistory numbers a move list in pairs: "1.e2e3 e8d8 2.a1a8"
func FormatHistory(moves []string) string {
	var sb strings.Builder
	for i, mv := range moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%d.", i/2+1)
		}
		sb.WriteString(mv)
	}
	return sb.String()
}
