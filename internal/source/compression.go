// internal/source/compression.go
package source

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// Encodings understood by Decode, named like Content-Encoding tokens.
const (
	EncodingIdentity = "identity"
	EncodingGzip     = "gzip"
	EncodingDeflate  = "deflate"
	EncodingBrotli   = "br"
)

// Pools for decompression readers to reduce allocation overhead in batch runs.
var (
	gzipReaderPool = sync.Pool{
		New: func() interface{} {
			// Reset is always called before use.
			return new(gzip.Reader)
		},
	}

	brotliReaderPool = sync.Pool{
		New: func() interface{} {
			return brotli.NewReader(nil)
		},
	}
)

// Shared empty reader used for resetting pooled readers before they go back.
var emptyReader = strings.NewReader("")

func getGzipReader(r io.Reader) (*gzip.Reader, error) {
	zr := gzipReaderPool.Get().(*gzip.Reader)
	if err := zr.Reset(r); err != nil {
		// The struct stays reusable; the next Reset re-initializes it.
		gzipReaderPool.Put(zr)
		return nil, err
	}
	return zr, nil
}

func putGzipReader(zr *gzip.Reader) {
	if zr == nil {
		return
	}
	// Reset with an empty reader returns io.EOF, which is expected here.
	_ = zr.Reset(emptyReader)
	gzipReaderPool.Put(zr)
}

func getBrotliReader(r io.Reader) (*brotli.Reader, error) {
	br := brotliReaderPool.Get().(*brotli.Reader)
	if err := br.Reset(r); err != nil {
		brotliReaderPool.Put(br)
		return nil, err
	}
	return br, nil
}

func putBrotliReader(br *brotli.Reader) {
	if br == nil {
		return
	}
	_ = br.Reset(emptyReader)
	brotliReaderPool.Put(br)
}

// EncodingForPath infers the encoding of a file from its extension.
func EncodingForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".br":
		return EncodingBrotli
	case ".gz", ".gzip":
		return EncodingGzip
	case ".zz", ".deflate":
		return EncodingDeflate
	default:
		return EncodingIdentity
	}
}

// closeWrapper closes the decoder and the underlying source, returning
// pooled readers through poolCallback.
type closeWrapper struct {
	io.ReadCloser
	source       io.Closer
	poolCallback func()
}

func (w *closeWrapper) Close() error {
	if w.poolCallback != nil {
		w.poolCallback()
		w.poolCallback = nil
	}
	err1 := w.ReadCloser.Close()
	var err2 error
	if w.source != nil {
		err2 = w.source.Close()
	}
	return errors.Join(err1, err2)
}

// Decode wraps r with a decompressor for encoding. Closing the returned
// reader closes r when r is an io.Closer.
//
// If Decode returns an error, r may have been partially consumed.
func Decode(r io.Reader, encoding string) (io.ReadCloser, error) {
	src, _ := r.(io.Closer)

	var (
		reader       io.ReadCloser
		poolCallback func()
	)
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case EncodingGzip:
		zr, err := getGzipReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip initialization error: %w", err)
		}
		reader = zr
		poolCallback = func() { putGzipReader(zr) }

	case EncodingDeflate:
		reader = tryDeflate(r)

	case EncodingBrotli:
		br, err := getBrotliReader(r)
		if err != nil {
			return nil, fmt.Errorf("brotli initialization error: %w", err)
		}
		// brotli.Reader has no Close.
		reader = io.NopCloser(br)
		poolCallback = func() { putBrotliReader(br) }

	case EncodingIdentity, "":
		reader = io.NopCloser(r)

	default:
		return nil, fmt.Errorf("unsupported encoding: %s", encoding)
	}

	return &closeWrapper{ReadCloser: reader, source: src, poolCallback: poolCallback}, nil
}

// resettableReader buffers the start of a stream so a second decoder can
// start over after the first rejected the header.
type resettableReader struct {
	r      io.Reader
	buf    *bytes.Buffer
	source io.Reader
}

func newResettableReader(r io.Reader) *resettableReader {
	buf := bytes.NewBuffer(make([]byte, 0, 128))
	return &resettableReader{r: io.TeeReader(r, buf), buf: buf, source: r}
}

func (rr *resettableReader) Read(p []byte) (int, error) {
	return rr.r.Read(p)
}

// Reset replays the buffered prefix followed by the rest of the source.
func (rr *resettableReader) Reset() {
	rr.r = io.MultiReader(bytes.NewReader(rr.buf.Bytes()), rr.source)
}

// tryDeflate decodes zlib-wrapped deflate, falling back to raw deflate.
func tryDeflate(r io.Reader) io.ReadCloser {
	rr := newResettableReader(r)
	if zr, err := zlib.NewReader(rr); err == nil {
		return zr
	}
	rr.Reset()
	return flate.NewReader(rr)
}
