// Package fastq is a streaming reader for FASTQ and FASTA sequence records,
// plain or gzip-compressed, from files, standard input, or object storage.
package fastq

import (
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// recordMarker is the leading character of a valid identifier line.
const recordMarker = '@'

// qualityFiller is repeated to the sequence length when the input carries no
// quality line.
const qualityFiller = "K"

// Options are options for a Reader
type Options struct {
	// NoQuality marks input with no quality lines (FASTA-style). Quality is
	// synthesized as 'K' repeated to the sequence length.
	NoQuality bool
	// Phred64 marks quality scores as phred+64 rather than phred+33. The
	// flag is recorded on every Record and not otherwise interpreted.
	Phred64 bool
	// BufferSize is the chunk buffer capacity in bytes. Defaults to 1 MiB.
	BufferSize int
	// Validators decide whether a record is returned or silently skipped.
	Validators []Validator
	// Concurrency is the number of inputs NewScanner reads in parallel.
	Concurrency int
	// StorageClient and Bucket configure OpenObject. When StorageClient is
	// nil an unauthenticated client is created on demand.
	StorageClient *storage.Client
	Bucket        string
}

func (o *Options) withDefaults() *Options {
	if o == nil {
		o = new(Options)
	}
	if o.BufferSize > 0 && o.Concurrency > 0 {
		return o
	}
	out := *o
	if out.BufferSize <= 0 {
		out.BufferSize = defaultBufferSize
	}
	if out.Concurrency <= 0 {
		out.Concurrency = 1
	}
	return &out
}

// Reader assembles records from a single byte stream. It is synchronous and
// must not be shared across goroutines.
type Reader struct {
	opts *Options
	src  *readerSource
	sc   *lineScanner
}

// Open opens a FASTQ file. "-" and "/dev/stdin" read standard input;
// compressed input is detected by a .gz suffix or the gzip magic bytes.
func Open(path string, opts *Options) (*Reader, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}
	return newReader(src, opts)
}

// NewReader reads uncompressed FASTQ from r.
func NewReader(r io.Reader, opts *Options) (*Reader, error) {
	return newReader(newSource(r), opts)
}

func newReader(src *readerSource, opts *Options) (*Reader, error) {
	opts = opts.withDefaults()
	sc, err := newLineScanner(src, opts.BufferSize)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return &Reader{opts: opts, src: src, sc: sc}, nil
}

// Close releases the underlying byte source.
func (r *Reader) Close() error {
	return r.src.Close()
}

// Bytes returns input bytes consumed so far and the total input size. Either
// is -1 when unknowable.
func (r *Reader) Bytes() (read, total int64) {
	return r.src.Bytes()
}

// HasNoLineBreakAtEnd reports whether the input ended without a trailing
// line terminator. Informational, not an error.
func (r *Reader) HasNoLineBreakAtEnd() bool {
	return r.sc.noEOL
}

// Next returns the next record. error is io.EOF at the end of the stream
// and *MalformedRecordError for a quality/sequence length mismatch; after a
// mismatch the stream remains readable. Records rejected by a validator are
// skipped.
func (r *Reader) Next() (*Record, error) {
	for {
		rec, err := r.readRecord()
		if err != nil {
			return nil, err
		}
		if r.validateRecord(rec) {
			return rec, nil
		}
	}
}

func (r *Reader) validateRecord(rec *Record) bool {
	for _, validator := range r.opts.Validators {
		ok := validator(rec)
		if !ok {
			return false
		}
	}
	return true
}

func (r *Reader) readRecord() (*Record, error) {
	name, err := r.sc.getLine()
	if err != nil {
		return nil, err
	}
	// Tolerate blank and junk lines before an identifier: retry until a
	// marker-prefixed line shows up or the source reports exhaustion.
	for name == "" || name[0] != recordMarker {
		if name == "" && r.sc.exhausted() {
			return nil, io.EOF
		}
		name, err = r.sc.getLine()
		if err != nil {
			return nil, err
		}
	}

	seq, err := r.sc.getLine()
	if err != nil {
		return nil, err
	}
	sep, err := r.sc.getLine()
	if err != nil {
		return nil, err
	}

	if r.opts.NoQuality {
		return &Record{
			Name:      name,
			Sequence:  seq,
			Separator: sep,
			Quality:   strings.Repeat(qualityFiller, len(seq)),
			Phred64:   r.opts.Phred64,
		}, nil
	}

	qual, err := r.sc.getLine()
	if err != nil {
		return nil, err
	}
	if len(qual) != len(seq) {
		return nil, &MalformedRecordError{
			Name:      name,
			Sequence:  seq,
			Separator: sep,
			Quality:   qual,
		}
	}
	return &Record{
		Name:      name,
		Sequence:  seq,
		Separator: sep,
		Quality:   qual,
		Phred64:   r.opts.Phred64,
	}, nil
}
