package fastq

import (
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// OpenObject streams a FASTQ object from the bucket configured in opts.
// Objects named *.gz are decompressed on the fly. When opts.StorageClient is
// nil an unauthenticated client is created and closed with the Reader.
func OpenObject(ctx context.Context, object string, opts *Options) (*Reader, error) {
	opts = opts.withDefaults()
	if opts.Bucket == "" {
		return nil, errors.New("fastq: no bucket configured")
	}
	client := opts.StorageClient
	var ownsClient bool
	if client == nil {
		var err error
		client, err = storage.NewClient(ctx, option.WithoutAuthentication())
		if err != nil {
			return nil, err
		}
		ownsClient = true
	}
	closeOwned := func() {
		if ownsClient {
			_ = client.Close()
		}
	}

	obj, err := client.Bucket(opts.Bucket).Object(object).NewReader(ctx)
	if err != nil {
		closeOwned()
		return nil, err
	}

	var src *readerSource
	if strings.HasSuffix(object, ".gz") {
		src, err = newGzipSource(obj)
		if err != nil {
			_ = obj.Close()
			closeOwned()
			return nil, err
		}
		src.closers = append(src.closers, obj)
	} else {
		src = newSource(obj)
		src.closers = []io.Closer{obj}
	}
	if ownsClient {
		src.closers = append(src.closers, client)
	}
	return newReader(src, opts)
}
