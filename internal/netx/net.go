// Package netx contains transport helpers shared by the registry client and
// the object storage uploaders.
package netx

import (
	"errors"
	"io"
	"net"
	"net/url"
)

// ProgressFunc receives the cumulative number of bytes read and the
// expected total.
type ProgressFunc func(done, total int64)

// ProgressReader reports read progress of an upload body.
type ProgressReader struct {
	r     io.Reader
	total int64
	done  int64
	fn    ProgressFunc
}

// NewProgressReader wraps r. fn may be nil.
func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, fn: fn}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		if p.fn != nil {
			p.fn(p.done, p.total)
		}
	}
	return n, err
}

// Seek rewinds or advances the underlying reader and resets the counter to
// the new offset. Some HTTP clients rewind bodies before retrying or signing.
func (p *ProgressReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := p.r.(io.Seeker)
	if !ok {
		return 0, errors.New("progress reader: underlying reader is not seekable")
	}
	pos, err := s.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	p.done = pos
	return pos, nil
}

// Done returns the number of bytes read so far.
func (p *ProgressReader) Done() int64 { return p.done }

// Fraction converts done/total into [0,1]. An unknown total yields 0.
func Fraction(done, total int64) float64 {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done >= total {
		return 1
	}
	return float64(done) / float64(total)
}

// IsNetworkError reports whether err originates from the network layer
// (dial, DNS, connection reset, timeout) rather than from a server response.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}
