package ingest

import (
	"fmt"
	"io"
)

// CountingReader tracks bytes read and fails once a limit is passed.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64 // 0 means unlimited
}

// NewCountingReader wraps r. A non-positive limit disables the check.
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, r.Limit)
	}
	return n, err
}

// Progress returns the share of Limit read so far as a percentage (0-100).
// Returns 0 when there is no limit.
func (r *CountingReader) Progress() int {
	if r.Limit <= 0 {
		return 0
	}
	pct := int(r.BytesRead * 100 / r.Limit)
	if pct > 100 {
		pct = 100
	}
	return pct
}
