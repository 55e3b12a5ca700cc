package fastq

// defaultBufferSize is the chunk buffer capacity. It is a throughput knob
// only: lines of any length are handled at any capacity.
const defaultBufferSize = 1 << 20

type scanState int

const (
	stateScanning scanState = iota
	stateNeedsRefill
	stateDone
)

// lineScanner turns a Source into logical lines through a fixed-capacity
// chunk buffer. A line that straddles refills accumulates in carry, so a
// single line may span any number of chunks. Cursor invariant:
// 0 <= start <= end <= dataLen <= len(buf).
type lineScanner struct {
	src     Source
	buf     []byte
	dataLen int // bytes valid in buf after the last refill
	start   int // first byte of the current line fragment
	end     int // next unexamined byte
	carry   []byte
	state   scanState
	noEOL   bool // input ended without a trailing line terminator
}

// newLineScanner primes the buffer with the first chunk so that read and
// decompression errors surface at construction.
func newLineScanner(src Source, bufferSize int) (*lineScanner, error) {
	s := &lineScanner{
		src: src,
		buf: make([]byte, bufferSize),
	}
	if err := s.refill(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *lineScanner) refill() error {
	n, err := s.src.Fill(s.buf)
	s.dataLen = n
	s.start, s.end = 0, 0
	if err != nil {
		return err
	}
	if n > 0 && n < len(s.buf) && s.buf[n-1] != '\n' {
		s.noEOL = true
	}
	return nil
}

// scanBuf advances end to the next terminator or to dataLen. It reports
// whether a terminator was found.
func (s *lineScanner) scanBuf() bool {
	for s.end < s.dataLen && s.buf[s.end] != '\n' {
		s.end++
	}
	return s.end < s.dataLen
}

// takeLine hands the accumulated carry to the caller as an owned string,
// stripping exactly one trailing carriage return. Strings never alias the
// chunk buffer, so they stay valid across refills.
func (s *lineScanner) takeLine() string {
	line := s.carry
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	out := string(line)
	s.carry = s.carry[:0]
	return out
}

// getLine returns the next logical line. An empty line with a nil error is
// ambiguous between a blank input line and exhaustion; callers resolve that
// with exhausted(). Source read failures come back as errors, never
// disguised as end of data.
func (s *lineScanner) getLine() (string, error) {
	for {
		switch s.state {
		case stateScanning:
			found := s.scanBuf()
			s.carry = append(s.carry, s.buf[s.start:s.end]...)
			if !found {
				s.state = stateNeedsRefill
				continue
			}
			// step past the terminator so the next scan doesn't get stuck
			s.start = s.end + 1
			s.end = s.start
			return s.takeLine(), nil
		case stateNeedsRefill:
			if s.dataLen < len(s.buf) || s.dataLen == 0 || s.src.EOF() {
				s.state = stateDone
				continue
			}
			if err := s.refill(); err != nil {
				s.state = stateDone
				s.carry = s.carry[:0]
				return "", err
			}
			s.state = stateScanning
		default: // stateDone
			// the carry is the unterminated final line, emitted exactly once
			if len(s.carry) > 0 {
				return s.takeLine(), nil
			}
			return "", nil
		}
	}
}

// exhausted reports whether no further line can come out of the scanner. It
// is what distinguishes a blank input line from end of stream.
func (s *lineScanner) exhausted() bool {
	if s.state == stateDone {
		return len(s.carry) == 0
	}
	return s.start >= s.dataLen && len(s.carry) == 0 && s.src.EOF()
}
