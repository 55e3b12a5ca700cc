package fastq

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Source is the byte-producing side of a stream. Fill reads into p and
// returns fewer than len(p) bytes only at end of input; a return of 0 means
// no more data. EOF reports whether the input is exhausted.
type Source interface {
	Fill(p []byte) (int, error)
	EOF() bool
}

// countingReader counts bytes consumed from the underlying input so that
// progress can be reported against the on-disk size even when the payload
// is compressed.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// readerSource adapts an io.Reader to the Source contract. Fill tops the
// buffer up until it is full or the reader runs dry, so a short fill always
// means end of input.
type readerSource struct {
	r       io.Reader
	count   *countingReader
	total   int64
	eof     bool
	closers []io.Closer
}

func newSource(r io.Reader) *readerSource {
	return &readerSource{r: r, total: -1}
}

// newGzipSource decompresses r on the fly. The gzip reader is owned by the
// source and closed with it.
func newGzipSource(r io.Reader) (*readerSource, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &readerSource{r: gzr, total: -1, closers: []io.Closer{gzr}}, nil
}

func (s *readerSource) Fill(p []byte) (int, error) {
	if s.eof {
		return 0, nil
	}
	// Top the buffer up until it is full or the reader is drained. A clean
	// io.EOF marks exhaustion; anything else (a truncated gzip stream, a
	// failed read) is a real error and must not look like end of data.
	var n int
	for n < len(p) {
		m, err := s.r.Read(p[n:])
		n += m
		if err == io.EOF {
			s.eof = true
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *readerSource) EOF() bool {
	return s.eof
}

// Bytes returns input bytes consumed so far and the total input size, or -1
// when the total is unknowable (stdin, network objects).
func (s *readerSource) Bytes() (read, total int64) {
	read = -1
	if s.count != nil {
		read = s.count.n
	}
	return read, s.total
}

func (s *readerSource) Close() error {
	var err error
	for _, c := range s.closers {
		cErr := c.Close()
		if err == nil {
			err = cErr
		}
	}
	return err
}

// openSource opens path as a byte source. "-" and "/dev/stdin" read standard
// input. Compressed inputs are detected by a .gz suffix or the gzip magic
// bytes.
func openSource(path string) (*readerSource, error) {
	if path == "-" || path == "/dev/stdin" {
		src := newSource(os.Stdin)
		src.count = &countingReader{r: os.Stdin}
		src.r = src.count
		return src, nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var total int64 = -1
	if info, statErr := fh.Stat(); statErr == nil {
		total = info.Size()
	}
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	if _, err = fh.Seek(0, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, err
	}
	count := &countingReader{r: fh}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gzr, err := gzip.NewReader(count)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &readerSource{
			r:       gzr,
			count:   count,
			total:   total,
			closers: []io.Closer{gzr, fh},
		}, nil
	}
	return &readerSource{
		r:       count,
		count:   count,
		total:   total,
		closers: []io.Closer{fh},
	}, nil
}
