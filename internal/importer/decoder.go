package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Accepted MIME types for uploads.
const (
	MimeCSV       = "text/csv"
	MimeXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeXLSLegacy = "application/vnd.ms-excel"
	MimeJSON      = "application/json"
)

// DefaultMaxFileSize caps uploads at 50 MB. Larger inputs fail fast
// before any parsing happens.
const DefaultMaxFileSize = 50 * 1024 * 1024

// RawRow is one source record as decoded: a loose header -> value mapping
// plus the 1-based row number it came from (header row excluded).
// Values are string, float64, bool, or nil depending on the source format.
// A RawRow is immutable once decoded.
type RawRow struct {
	Line   int
	Fields map[string]any
}

// RowSet is the ordered output of decoding one file. Header order is
// exactly file order (for JSON, first-seen key order across all objects).
type RowSet struct {
	Headers []string
	Rows    []RawRow
}

// Decoder turns an uploaded byte stream into a RowSet. It is a pure
// transform: no side effects, row order preserved.
type Decoder struct {
	maxSize int64
}

// NewDecoder creates a decoder with the given size cap. Zero or negative
// means DefaultMaxFileSize.
func NewDecoder(maxSize int64) *Decoder {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Decoder{maxSize: maxSize}
}

// Decode parses data according to the declared MIME type. One decode
// failure aborts the whole run; there is no partial decode.
func (d *Decoder) Decode(data []byte, mimeType string) (*RowSet, error) {
	if int64(len(data)) > d.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(data), d.maxSize)
	}

	switch normalizeMime(mimeType) {
	case MimeCSV:
		return decodeCSV(data)
	case MimeXLSX, MimeXLSLegacy:
		return decodeExcel(data)
	case MimeJSON:
		return decodeJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, mimeType)
	}
}

// normalizeMime strips parameters like "; charset=utf-8" and lowercases.
func normalizeMime(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

func decodeCSV(data []byte) (*RowSet, error) {
	reader := csv.NewReader(stripBOM(bytes.NewReader(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("%w: csv header: %v", ErrMalformedFile, err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	set := &RowSet{Headers: headers}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv row %d: %v", ErrMalformedFile, line+1, err)
		}
		line++

		fields := make(map[string]any, len(headers))
		for i, h := range headers {
			if i < len(record) {
				fields[h] = record[i]
			}
		}
		set.Rows = append(set.Rows, RawRow{Line: line, Fields: fields})
	}
	return set, nil
}

func decodeExcel(data []byte) (*RowSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrMalformedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	// First sheet only, first row = headers.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx sheet %q: %v", ErrMalformedFile, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	set := &RowSet{Headers: headers}
	for i, record := range rows[1:] {
		fields := make(map[string]any, len(headers))
		for j, h := range headers {
			if j < len(record) {
				fields[h] = record[j]
			}
		}
		set.Rows = append(set.Rows, RawRow{Line: i + 1, Fields: fields})
	}
	return set, nil
}

// decodeJSON accepts a top-level array of flat objects. The header set is
// the union of all objects' keys in first-seen document order; keys
// missing on a given row simply stay absent (read back as null).
func decodeJSON(data []byte) (*RowSet, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: json: expected a top-level array of objects", ErrMalformedFile)
	}

	set := &RowSet{}
	seen := make(map[string]bool)

	for i, raw := range elements {
		keys, fields, err := decodeJSONObject(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: json element %d: %v", ErrMalformedFile, i, err)
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				set.Headers = append(set.Headers, k)
			}
		}
		set.Rows = append(set.Rows, RawRow{Line: i + 1, Fields: fields})
	}
	return set, nil
}

// decodeJSONObject parses one object, returning its keys in document
// order. A plain map would lose key order and break decode determinism.
func decodeJSONObject(raw json.RawMessage) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected an object, got %v", tok)
	}

	var keys []string
	fields := make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := keyTok.(string)

		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		fields[key] = coerceJSONValue(val)
	}
	return keys, fields, nil
}

// coerceJSONValue flattens json.Number into float64 and rejects nothing:
// nested values are stringified so later stages only see scalars.
func coerceJSONValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	case string, bool, nil:
		return val
	default:
		// Nested arrays/objects are not part of the flat-object contract;
		// keep their textual form rather than dropping data.
		b, _ := json.Marshal(val)
		return string(b)
	}
}

// stripBOM wraps a reader to strip a UTF-8 BOM if present.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return bytes.NewReader(buf[:n])
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(bytes.NewReader(buf[:n]), r)
}
