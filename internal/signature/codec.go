package signature

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const fieldsPerRecord = 5

// Row is one line of the signature table.
type Row struct {
	Label     string
	Signature Signature

	// Cell is the pixel field as it was read. WriteTable emits it unchanged
	// when set and falls back to the canonical encoding otherwise.
	Cell string
}

func (r Row) cell() string {
	if r.Cell != "" {
		return r.Cell
	}
	return EncodeSignature(r.Signature)
}

// EncodeSignature renders s in the canonical "[[x, y, b, g, r], ...]" form.
func EncodeSignature(s Signature) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, px := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "[%d, %d, %d, %d, %d]", px.X, px.Y, px.Color.B, px.Color.G, px.Color.R)
	}
	b.WriteByte(']')
	return b.String()
}

// DecodeSignature parses a "[[x, y, b, g, r], ...]" array. Every record must
// hold exactly five integers with non-negative coordinates and channels in
// [0,255]; anything else is rejected rather than coerced.
func DecodeSignature(text string) (Signature, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, errors.New("signature must be an array of [x, y, b, g, r] records")
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	var records [][]json.RawMessage
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode pixel records: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after pixel records")
	}

	sig := make(Signature, 0, len(records))
	for i, record := range records {
		px, err := decodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		sig = append(sig, px)
	}
	return sig, nil
}

func decodeRecord(record []json.RawMessage) (ReferencePixel, error) {
	if len(record) != fieldsPerRecord {
		return ReferencePixel{}, fmt.Errorf("has %d fields, want %d", len(record), fieldsPerRecord)
	}
	var values [fieldsPerRecord]int
	for i, raw := range record {
		v, err := strconv.Atoi(string(raw))
		if err != nil {
			return ReferencePixel{}, fmt.Errorf("field %d: %s is not an integer", i, raw)
		}
		values[i] = v
	}
	if values[0] < 0 || values[1] < 0 {
		return ReferencePixel{}, fmt.Errorf("negative coordinate (%d,%d)", values[0], values[1])
	}
	for i := 2; i < fieldsPerRecord; i++ {
		if values[i] < 0 || values[i] > 255 {
			return ReferencePixel{}, fmt.Errorf("channel value %d out of range [0,255]", values[i])
		}
	}
	return ReferencePixel{
		X: values[0],
		Y: values[1],
		Color: Color{
			B: uint8(values[2]),
			G: uint8(values[3]),
			R: uint8(values[4]),
		},
	}, nil
}

// MarshalText implements encoding.TextMarshaler using the canonical table form.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(EncodeSignature(s)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Signature) UnmarshalText(text []byte) error {
	decoded, err := DecodeSignature(string(text))
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// ReadTable decodes every row of a signature table. The first malformed row
// aborts the read with a *ValidationError; path is only used for messages.
func ReadTable(r io.Reader, path string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return nil, &ValidationError{Path: path, Line: line, Reason: err.Error()}
		}
		line, _ := reader.FieldPos(0)

		label := record[0]
		if len(record) != 2 {
			return nil, &ValidationError{Path: path, Line: line, Label: label,
				Reason: fmt.Sprintf("expected 2 fields (label, pixels), got %d", len(record))}
		}
		if strings.TrimSpace(label) == "" {
			return nil, &ValidationError{Path: path, Line: line, Reason: "empty label"}
		}
		sig, err := DecodeSignature(record[1])
		if err != nil {
			return nil, &ValidationError{Path: path, Line: line, Label: label, Reason: err.Error()}
		}
		rows = append(rows, Row{Label: label, Signature: sig, Cell: record[1]})
	}
}

// WriteTable encodes rows in order. Rows that carry their original cell text
// are written back as read; the rest use the canonical form. crlf selects "\r\n" line endings, which
// is what the bootstrap tool emits.
func WriteTable(w io.Writer, rows []Row, crlf bool) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = crlf
	for _, row := range rows {
		if err := writer.Write([]string{row.Label, row.cell()}); err != nil {
			return fmt.Errorf("write row %q: %w", row.Label, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func usesCRLF(data []byte) bool {
	return bytes.Contains(data, []byte("\r\n"))
}
