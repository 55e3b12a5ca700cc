package fastq

import (
	"io"

	"golang.org/x/sync/errgroup"
)

// PairReader synchronizes two record streams, or one interleaved stream read
// twice per step, into a stream of pairs.
type PairReader struct {
	left        *Reader
	right       *Reader
	interleaved bool
}

// NewPairReader pairs records positionally from two independent streams.
// The two sides are read concurrently; each goroutine touches only its own
// Reader, so no buffer state is shared.
func NewPairReader(left, right *Reader) *PairReader {
	return &PairReader{left: left, right: right}
}

// NewInterleavedReader pairs consecutive records of a single stream: the
// first read of each step is the left mate, the second the right.
func NewInterleavedReader(r *Reader) *PairReader {
	return &PairReader{left: r, interleaved: true}
}

// OpenPair opens leftPath and rightPath with the same options.
func OpenPair(leftPath, rightPath string, opts *Options) (*PairReader, error) {
	left, err := Open(leftPath, opts)
	if err != nil {
		return nil, err
	}
	right, err := Open(rightPath, opts)
	if err != nil {
		_ = left.Close()
		return nil, err
	}
	return NewPairReader(left, right), nil
}

// Next returns the next pair. error is io.EOF as soon as either side is
// exhausted; a remaining unpaired record on the other side is discarded and
// no partial pair is ever returned.
func (p *PairReader) Next() (*RecordPair, error) {
	if p.interleaved {
		return p.nextInterleaved()
	}
	var (
		left, right       *Record
		leftEnd, rightEnd bool
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		left, err = p.left.Next()
		if err == io.EOF {
			leftEnd = true
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		right, err = p.right.Next()
		if err == io.EOF {
			rightEnd = true
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if leftEnd || rightEnd {
		return nil, io.EOF
	}
	return &RecordPair{Left: left, Right: right}, nil
}

func (p *PairReader) nextInterleaved() (*RecordPair, error) {
	left, err := p.left.Next()
	if err != nil {
		return nil, err
	}
	right, err := p.left.Next()
	if err != nil {
		return nil, err
	}
	return &RecordPair{Left: left, Right: right}, nil
}

// Close closes both sides.
func (p *PairReader) Close() error {
	err := p.left.Close()
	if p.right != nil {
		rErr := p.right.Close()
		if err == nil {
			err = rErr
		}
	}
	return err
}
