// Package checker runs an external build checker and parses its structured
// diagnostic stream (newline-delimited JSON, cargo's --message-format=json
// shape) into typed diagnostics.
package checker

import (
	"bufio"
	"encoding/json"
	"io"

	"stitch/internal/diag"
)

// messageTag is the reason discriminant of entries we keep.
const messageTag = "compiler-message"

// maxLineBytes bounds one NDJSON line; rendered bodies get large.
const maxLineBytes = 16 * 1024 * 1024

type envelope struct {
	Reason  string          `json:"reason"`
	Message json.RawMessage `json:"message"`
}

type wireSpan struct {
	IsPrimary   bool   `json:"is_primary"`
	FileName    string `json:"file_name"`
	LineStart   uint32 `json:"line_start"`
	ColumnStart uint32 `json:"column_start"`
}

type wireMessage struct {
	Level string `json:"level"`
	Code  *struct {
		Code string `json:"code"`
	} `json:"code"`
	Spans    []wireSpan `json:"spans"`
	Rendered string     `json:"rendered"`
}

// ParseStream reads newline-delimited JSON from r and appends one Diagnostic
// per compiler-message entry to bag. Blank lines, lines that are not JSON
// objects, and entries with other reason tags are skipped silently; skipped
// counts only the malformed lines. Raw message objects come back in stream
// order for baseline persistence.
func ParseStream(r io.Reader, bag *diag.Bag) (raw []json.RawMessage, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		line := sc.Bytes()
		if len(trimSpaceASCII(line)) == 0 {
			continue
		}

		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			// мусор между JSON-строками (вывод самой сборки) — пропускаем
			skipped++
			continue
		}
		if env.Reason != messageTag || len(env.Message) == 0 {
			continue
		}

		var msg wireMessage
		if err := json.Unmarshal(env.Message, &msg); err != nil {
			skipped++
			continue
		}

		d := diag.Diagnostic{
			Severity: diag.SeverityForLevel(msg.Level),
			Level:    msg.Level,
			Rendered: msg.Rendered,
			Raw:      append(json.RawMessage(nil), env.Message...),
		}
		if msg.Code != nil {
			d.Code = msg.Code.Code
		}
		for _, sp := range msg.Spans {
			if sp.IsPrimary {
				d.Primary = diag.Location{File: sp.FileName, Line: sp.LineStart, Col: sp.ColumnStart}
				break
			}
		}
		// отсутствие primary span — не ошибка, остаётся пустая Location

		raw = append(raw, d.Raw)
		bag.Add(d)
	}
	if err := sc.Err(); err != nil {
		return raw, skipped, err
	}
	return raw, skipped, nil
}

func trimSpaceASCII(b []byte) []byte {
	start := 0
	for start < len(b) && (b[start] == ' ' || b[start] == '\t' || b[start] == '\r') {
		start++
	}
	end := len(b)
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t' || b[end-1] == '\r') {
		end--
	}
	return b[start:end]
}
