package fastq

import (
	"context"
	"io"
	"sync"

	"github.com/killa-beez/gopkgs/pool"
)

// Scanner reads records from multiple inputs concurrently. Record order
// across inputs is unspecified; order within one input is preserved.
type Scanner struct {
	readers    []*Reader
	readerErrs []error
	records    chan *Record
	cancel     func()
	rec        *Record

	errLock sync.RWMutex
	err     error

	doneLock sync.Mutex
	doneChan chan struct{}
	done     bool
}

// NewScanner opens every path and drives one Reader per input under a
// bounded worker pool.
func NewScanner(ctx context.Context, paths []string, opts *Options) (*Scanner, error) {
	opts = opts.withDefaults()
	readers := make([]*Reader, 0, len(paths))
	for _, p := range paths {
		rdr, err := Open(p, opts)
		if err != nil {
			for _, open := range readers {
				_ = open.Close()
			}
			return nil, err
		}
		readers = append(readers, rdr)
	}
	m := &Scanner{
		readers:    readers,
		readerErrs: make([]error, len(readers)),
		records:    make(chan *Record, opts.Concurrency*1000),
		doneChan:   make(chan struct{}),
	}
	ctx, m.cancel = context.WithCancel(ctx)

	p := pool.New(len(readers), opts.Concurrency)
	for i := range readers {
		i := i
		rdr := readers[i]
		p.Add(pool.NewWorkUnit(func(ctx2 context.Context) {
			readerErr := runReader(ctx2, rdr, m.records)
			if readerErr == io.EOF {
				readerErr = nil
			}
			m.readerErrs[i] = readerErr
		}))
	}
	p.Start(ctx)
	go func() {
		p.Wait()
		m.beDone()
	}()
	return m, nil
}

func runReader(ctx context.Context, rdr *Reader, records chan<- *Record) error {
	for {
		rec, err := rdr.Next()
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case records <- rec:
		}
	}
}

func (m *Scanner) beDone() {
	m.doneLock.Lock()
	defer m.doneLock.Unlock()
	if m.done {
		return
	}
	close(m.doneChan)
	m.done = true
}

// Close stops the workers and closes every input.
func (m *Scanner) Close() error {
	m.cancel()
	var err error
	for _, rdr := range m.readers {
		closeErr := rdr.Close()
		if err == nil {
			err = closeErr
		}
	}
	m.beDone()
	return err
}

// Err returns the first reader failure, if any. io.EOF is not a failure.
func (m *Scanner) Err() error {
	m.errLock.RLock()
	err := m.err
	m.errLock.RUnlock()
	return err
}

// Scan advances to the next record from any input.
func (m *Scanner) Scan(_ context.Context) bool {
	select {
	case m.rec = <-m.records:
		return true
	default:
	}

	select {
	case m.rec = <-m.records:
		return true
	case <-m.doneChan:
		// drain records buffered between the last Scan and pool shutdown
		select {
		case m.rec = <-m.records:
			return true
		default:
		}
		m.errLock.Lock()
		for _, err := range m.readerErrs {
			if err != nil {
				m.err = err
				break
			}
		}
		m.errLock.Unlock()
		return false
	}
}

// Record returns the record read by the last call to Scan.
func (m *Scanner) Record() *Record {
	return m.rec
}
