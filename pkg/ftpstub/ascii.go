package ftpstub

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// copyLines copies src to dst one line at a time, writing every complete
// line with a CRLF terminator whether it arrived as LF or CRLF. A final line
// without a terminator is written unchanged. It returns the bytes read.
func copyLines(dst io.Writer, src io.Reader) (int64, error) {
	br := bufio.NewReader(src)
	var n int64
	for {
		line, err := br.ReadBytes('\n')
		n += int64(len(line))
		if len(line) > 0 {
			if line[len(line)-1] == '\n' {
				line = bytes.TrimSuffix(line[:len(line)-1], []byte{'\r'})
				line = append(line, '\r', '\n')
			}
			if _, werr := dst.Write(line); werr != nil {
				return n, werr
			}
		}
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}

// crlfWriter converts bare LF to CRLF on the way to w. CRLF passes through
// unchanged, including when CR and LF arrive in separate writes.
type crlfWriter struct {
	w      io.Writer
	prevCR bool
	buf    []byte
}

func newCRLFWriter(w io.Writer) *crlfWriter {
	return &crlfWriter{w: w}
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	c.buf = c.buf[:0]
	for _, b := range p {
		if b == '\n' && !c.prevCR {
			c.buf = append(c.buf, '\r')
		}
		c.buf = append(c.buf, b)
		c.prevCR = b == '\r'
	}
	if _, err := c.w.Write(c.buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
