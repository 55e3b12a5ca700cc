package fastq

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func newTestScanner(t *testing.T, data string, bufferSize int) *lineScanner {
	t.Helper()
	s, err := newLineScanner(newSource(strings.NewReader(data)), bufferSize)
	require.NoError(t, err)
	return s
}

// scanAll collects every line the way the record assembler does: an empty
// line on an exhausted stream is the end signal.
func scanAll(t *testing.T, s *lineScanner) []string {
	t.Helper()
	var lines []string
	for {
		line, err := s.getLine()
		require.NoError(t, err)
		if line == "" && s.exhausted() {
			return lines
		}
		lines = append(lines, line)
	}
}

// reconstruct reinserts the stripped terminators. Inputs whose final line is
// non-blank round-trip exactly.
func reconstruct(lines []string, hadFinalTerminator bool) string {
	out := strings.Join(lines, "\n")
	if hadFinalTerminator && len(lines) > 0 {
		out += "\n"
	}
	return out
}

func Test_lineScanner(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"a\n",
		"abc\ndef\nghi\n",
		"abc\ndef\nghi",
		"a\n\nb",
		strings.Repeat("x", 100) + "\nyy",
		strings.Repeat("x", 100) + "\nyy\n",
		"abcdefgh\nijklmnop\n", // lines landing exactly on small capacities
	}
	capacities := []int{1, 2, 3, 4, 5, 8, 9, 16, 64, defaultBufferSize}
	for _, input := range inputs {
		for _, capacity := range capacities {
			name := fmt.Sprintf("%q/cap%d", input, capacity)
			t.Run(name, func(t *testing.T) {
				s := newTestScanner(t, input, capacity)
				lines := scanAll(t, s)
				got := reconstruct(lines, strings.HasSuffix(input, "\n"))
				require.Equal(t, input, got)
				// the scanner stays terminal
				line, err := s.getLine()
				require.NoError(t, err)
				require.Empty(t, line)
				require.True(t, s.exhausted())
			})
		}
	}
}

func Test_lineScanner_carriageReturns(t *testing.T) {
	s := newTestScanner(t, "ab\r\ncd\r\nef\r", 4)
	require.Equal(t, []string{"ab", "cd", "ef"}, scanAll(t, s))

	// only one CR is stripped
	s = newTestScanner(t, "ab\r\r\n", defaultBufferSize)
	require.Equal(t, []string{"ab\r"}, scanAll(t, s))
}

func Test_lineScanner_noLineBreakAtEnd(t *testing.T) {
	s := newTestScanner(t, "ab\ncd", defaultBufferSize)
	require.True(t, s.noEOL)
	require.Equal(t, []string{"ab", "cd"}, scanAll(t, s))

	s = newTestScanner(t, "ab\ncd\n", defaultBufferSize)
	require.False(t, s.noEOL)
	require.Equal(t, []string{"ab", "cd"}, scanAll(t, s))
}

func Test_lineScanner_lineSpansManyChunks(t *testing.T) {
	line := strings.Repeat("ACGT", 64) // 256 bytes through a 4-byte buffer
	s := newTestScanner(t, line+"\nend\n", 4)
	require.Equal(t, []string{line, "end"}, scanAll(t, s))
}

type errSource struct {
	data []byte
	err  error
	fed  bool
}

func (s *errSource) Fill(p []byte) (int, error) {
	if !s.fed {
		s.fed = true
		return copy(p, s.data), nil
	}
	return 0, s.err
}

func (s *errSource) EOF() bool { return false }

func Test_lineScanner_readErrorIsNotEOF(t *testing.T) {
	src := &errSource{data: []byte("abcd"), err: errors.New("read failed")}
	s, err := newLineScanner(src, 4)
	require.NoError(t, err)
	line, err := s.getLine()
	require.EqualError(t, err, "read failed")
	require.Empty(t, line)
}

func Test_lineScanner_gzipSource(t *testing.T) {
	input := "@r1\nACGT\n+\nIIII\n@r2\nTTTT\n+\n!!!!\n"
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	_, err := gzw.Write([]byte(input))
	require.NoError(t, err)
	require.NoError(t, gzw.Close())

	for _, capacity := range []int{1, 7, defaultBufferSize} {
		src, err := newGzipSource(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		s, err := newLineScanner(src, capacity)
		require.NoError(t, err)
		lines := scanAll(t, s)
		require.Equal(t, input, reconstruct(lines, true))
		require.NoError(t, src.Close())
	}
}

func Test_lineScanner_truncatedGzip(t *testing.T) {
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	_, err := gzw.Write([]byte(strings.Repeat("ACGT", 1000) + "\n"))
	require.NoError(t, err)
	require.NoError(t, gzw.Close())

	src, err := newGzipSource(bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
	require.NoError(t, err)
	s, err := newLineScanner(src, 64)
	require.NoError(t, err)
	for {
		var line string
		line, err = s.getLine()
		if err != nil || line == "" && s.exhausted() {
			break
		}
	}
	require.Error(t, err)
}

func Benchmark_lineScanner(b *testing.B) {
	var plain bytes.Buffer
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&plain, "@read%d\n%s\n+\n%s\n", i, strings.Repeat("ACGT", 25), strings.Repeat("I", 100))
	}
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	_, err := gzw.Write(plain.Bytes())
	require.NoError(b, err)
	require.NoError(b, gzw.Close())

	b.ReportAllocs()
	b.SetBytes(int64(plain.Len()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src, err := newGzipSource(bytes.NewReader(buf.Bytes()))
		if err != nil {
			b.Fatal(err)
		}
		s, err := newLineScanner(src, defaultBufferSize)
		if err != nil {
			b.Fatal(err)
		}
		for {
			line, err := s.getLine()
			if err != nil {
				b.Fatal(err)
			}
			if line == "" && s.exhausted() {
				break
			}
		}
	}
}
