// Package ingest turns uploaded CSV files into the keyed rows consumed by
// core.Processor.
//
// Input is decoded to UTF-8 while it streams (a leading BOM is dropped and
// invalid bytes become U+FFFD), counted against a byte limit, and split into
// header-keyed rows with gocsv.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported source encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingISO88591    = "iso-8859-1"
)

var (
	// ErrEmptyFile is returned when the input has no data rows.
	ErrEmptyFile = errors.New("empty file")

	// ErrMissingColumns is returned when the header names none of the
	// banking columns.
	ErrMissingColumns = errors.New("missing required column")

	// ErrTooLarge is returned when the input exceeds MaxBytes or MaxRows.
	ErrTooLarge = errors.New("file too large")
)

// Options limits and configures ReadCSV and ReadRecords. Zero values disable the limits and
// select UTF-8.
type Options struct {
	Encoding string
	MaxBytes int64
	MaxRows  int
}

// ReadCSV reads a header-driven CSV stream. Header cells are trimmed; rows
// whose cells are all blank are skipped.
func ReadCSV(ctx context.Context, r io.Reader, opts Options) ([]map[string]any, error) {
	records, err := readRows(ctx, r, opts)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		row := make(map[string]any, len(rec))
		for k, v := range rec {
			row[k] = v
		}
		rows[i] = row
	}
	return rows, nil
}

// ReadRecords is ReadCSV projected straight onto the canonical columns.
func ReadRecords(ctx context.Context, r io.Reader, opts Options) ([]core.RawRecord, error) {
	records, err := readRows(ctx, r, opts)
	if err != nil {
		return nil, err
	}
	raws := make([]core.RawRecord, len(records))
	for i, rec := range records {
		raws[i] = core.MapStringRow(rec)
	}
	return raws, nil
}

func readRows(ctx context.Context, r io.Reader, opts Options) ([]map[string]string, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}

	counter := NewCountingReader(r, opts.MaxBytes)
	records, err := gocsv.CSVToMaps(transform.NewReader(counter, dec))
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.MaxRows > 0 && len(records) > opts.MaxRows {
		return nil, fmt.Errorf("%w: %d rows exceeds limit of %d", ErrTooLarge, len(records), opts.MaxRows)
	}

	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		if isBlankRecord(rec) {
			continue
		}
		row := make(map[string]string, len(rec))
		for k, v := range rec {
			row[strings.TrimSpace(k)] = v
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrEmptyFile)
	}
	if !hasBankingColumn(rows[0]) {
		return nil, fmt.Errorf("%w: expected at least one of %q, %q", ErrMissingColumns, core.ColCustomerID, core.ColTransactionID)
	}
	return rows, nil
}

func decoderFor(name string) (transform.Transformer, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case EncodingWindows1252, "cp1252":
		enc = charmap.Windows1252
	case EncodingISO88591, "latin1":
		enc = charmap.ISO8859_1
	default:
		return nil, fmt.Errorf("encoding error: unsupported encoding %q", name)
	}
	return enc.NewDecoder(), nil
}

func isBlankRecord(rec map[string]string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func hasBankingColumn(row map[string]string) bool {
	for k := range row {
		if core.IsCanonicalField(k) {
			return true
		}
	}
	return false
}
