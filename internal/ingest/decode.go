// Package ingest turns uploaded CSV payloads into normalized member and
// vehicle rows. Decoding tolerates a fixed list of text encodings;
// per-row failures are returned to the caller instead of aborting the
// batch.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrNotCSV: the upload does not carry a .csv filename.
	ErrNotCSV = errors.New("only CSV files are accepted")
	// ErrUndecodable: no supported encoding produced clean text.
	ErrUndecodable = errors.New("file content could not be decoded")
)

func CheckFilename(name string) error {
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".csv") {
		return ErrNotCSV
	}
	return nil
}

// Decode tries UTF-8, BOM-marked UTF-16 and Windows-1252 in that order
// and returns the first clean decoding. An attempt that would need a
// replacement character is treated as a failure so later encodings get
// their turn.
func Decode(content []byte) (string, error) {
	if utf8.Valid(content) {
		return strings.TrimPrefix(string(content), "\uFEFF"), nil
	}
	if s, ok := decodeUTF16(content); ok {
		return s, nil
	}
	if s, ok := decodeCharmap(content); ok {
		return s, nil
	}
	return "", ErrUndecodable
}

func decodeUTF16(content []byte) (string, bool) {
	if len(content) < 2 {
		return "", false
	}
	var endian unicode.Endianness
	switch {
	case content[0] == 0xFE && content[1] == 0xFF:
		endian = unicode.BigEndian
	case content[0] == 0xFF && content[1] == 0xFE:
		endian = unicode.LittleEndian
	default:
		return "", false
	}
	dec := unicode.UTF16(endian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(content)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

func decodeCharmap(content []byte) (string, bool) {
	out, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// ReadRows parses decoded CSV text into header-keyed rows. Short rows
// leave their trailing fields empty rather than failing the record.
func ReadRows(text string) ([]map[string]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		row := make(map[string]string, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(record) {
				row[key] = strings.TrimSpace(record[i])
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CapErrors truncates an error list to a preview, returning the number
// of dropped messages.
func CapErrors(errs []string, limit int) ([]string, int) {
	if len(errs) <= limit {
		return errs, 0
	}
	return errs[:limit], len(errs) - limit
}
