package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	jsoniter "github.com/json-iterator/go"
	"github.com/seqio/fastq"
)

var cli struct {
	Paths         []string `kong:"arg,optional,help='input file(s), .gz accepted. - reads stdin. default is -'"`
	NoQuality     bool     `kong:"help='input has no quality lines (FASTA-style); a filler quality is synthesized'"`
	Phred64       bool     `kong:"help='quality scores are phred+64 instead of phred+33'"`
	Interleaved   bool     `kong:"help='treat a single input as interleaved pairs'"`
	PairWith      string   `kong:"help='read this file as the right-side mate of the first input'"`
	MinLength     int      `kong:"help='skip records with a sequence shorter than this'"`
	MaxN          int      `kong:"default=-1,help='skip records with more than this many N bases'"`
	MinMeanQual   float64  `kong:"default=-1,help='skip records with a mean quality below this'"`
	SkipMalformed bool     `kong:"help='skip malformed records instead of failing'"`
	JSONL         bool     `kong:"name=jsonl,help='write records as JSON lines instead of FASTQ'"`
	Bucket        string   `kong:"help='read inputs as objects in this GCS bucket'"`
	Concurrency   int      `kong:"default=1,help='number of files to read concurrently (unordered output)'"`
	BufferSize    int      `kong:"name=buffer-size,help='chunk buffer capacity in bytes'"`
}

var json = jsoniter.ConfigFastest

func main() {
	k := kong.Parse(&cli)
	ctx := context.Background()

	paths := cli.Paths
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var validators []fastq.Validator
	if cli.MinLength > 0 {
		validators = append(validators, fastq.ValidateMinLength(cli.MinLength))
	}
	if cli.MaxN >= 0 {
		validators = append(validators, fastq.ValidateMaxN(cli.MaxN))
	}
	if cli.MinMeanQual >= 0 {
		validators = append(validators, fastq.ValidateMeanQuality(cli.MinMeanQual))
	}
	opts := &fastq.Options{
		NoQuality:   cli.NoQuality,
		Phred64:     cli.Phred64,
		BufferSize:  cli.BufferSize,
		Validators:  validators,
		Concurrency: cli.Concurrency,
		Bucket:      cli.Bucket,
	}

	out := bufio.NewWriter(os.Stdout)
	defer func() {
		_ = out.Flush()
	}()

	switch {
	case cli.PairWith != "":
		k.FatalIfErrorf(catPairs(paths[0], cli.PairWith, opts, out), "error reading pair")
	case cli.Interleaved:
		k.FatalIfErrorf(catInterleaved(ctx, paths[0], opts, out), "error reading interleaved input")
	case cli.Concurrency > 1 && len(paths) > 1 && cli.Bucket == "":
		k.FatalIfErrorf(catConcurrent(ctx, paths, opts, out), "error reading inputs")
	default:
		for _, p := range paths {
			k.FatalIfErrorf(catOne(ctx, p, opts, out), "error reading %s", p)
		}
	}
}

func openInput(ctx context.Context, path string, opts *fastq.Options) (*fastq.Reader, error) {
	if opts.Bucket != "" {
		return fastq.OpenObject(ctx, path, opts)
	}
	return fastq.Open(path, opts)
}

func catOne(ctx context.Context, path string, opts *fastq.Options, out io.Writer) error {
	rdr, err := openInput(ctx, path, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = rdr.Close() //nolint:errcheck // nothing to do with this error
	}()
	return drain(rdr, out)
}

func drain(rdr *fastq.Reader, out io.Writer) error {
	for {
		rec, err := rdr.Next()
		if err == io.EOF {
			return nil
		}
		var malformed *fastq.MalformedRecordError
		if cli.SkipMalformed && errors.As(err, &malformed) {
			fmt.Fprintf(os.Stderr, "fastqcat: skipping: %v\n", err)
			continue
		}
		if err != nil {
			return err
		}
		if err = writeRecord(out, rec); err != nil {
			return err
		}
	}
}

func catInterleaved(ctx context.Context, path string, opts *fastq.Options, out io.Writer) error {
	rdr, err := openInput(ctx, path, opts)
	if err != nil {
		return err
	}
	pr := fastq.NewInterleavedReader(rdr)
	defer func() {
		_ = pr.Close() //nolint:errcheck // nothing to do with this error
	}()
	return drainPairs(pr, out)
}

func catPairs(leftPath, rightPath string, opts *fastq.Options, out io.Writer) error {
	pr, err := fastq.OpenPair(leftPath, rightPath, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = pr.Close() //nolint:errcheck // nothing to do with this error
	}()
	return drainPairs(pr, out)
}

func drainPairs(pr *fastq.PairReader, out io.Writer) error {
	for {
		pair, err := pr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if cli.JSONL {
			line, err := json.Marshal(pair)
			if err != nil {
				return err
			}
			if _, err = out.Write(append(line, '\n')); err != nil {
				return err
			}
			continue
		}
		if err = writeRecord(out, pair.Left); err != nil {
			return err
		}
		if err = writeRecord(out, pair.Right); err != nil {
			return err
		}
	}
}

func catConcurrent(ctx context.Context, paths []string, opts *fastq.Options, out io.Writer) error {
	sc, err := fastq.NewScanner(ctx, paths, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = sc.Close() //nolint:errcheck // nothing to do with this error
	}()
	for sc.Scan(ctx) {
		if err = writeRecord(out, sc.Record()); err != nil {
			return err
		}
	}
	return sc.Err()
}

func writeRecord(out io.Writer, rec *fastq.Record) error {
	if cli.JSONL {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = out.Write(append(line, '\n'))
		return err
	}
	_, err := io.WriteString(out, rec.String())
	return err
}
