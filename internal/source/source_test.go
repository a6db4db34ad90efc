// internal/source/source_test.go
package source

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testMarkup = `<html><head><style>p { color: red }</style></head><body><p>Hi</p></body></html>`

// compressData encodes data with the named encoding.
func compressData(t *testing.T, data string, encoding string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	var writer io.WriteCloser

	switch encoding {
	case EncodingGzip:
		writer = gzip.NewWriter(buf)
	case EncodingDeflate:
		writer = zlib.NewWriter(buf)
	case "raw-deflate":
		fw, err := flate.NewWriter(buf, flate.DefaultCompression)
		require.NoError(t, err)
		writer = fw
	case EncodingBrotli:
		writer = brotli.NewWriter(buf)
	default:
		t.Fatalf("Unsupported encoding: %s", encoding)
	}

	_, err := writer.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestEncodingForPath(t *testing.T) {
	tests := map[string]string{
		"page.html":      EncodingIdentity,
		"page.html.br":   EncodingBrotli,
		"page.html.gz":   EncodingGzip,
		"PAGE.HTML.GZ":   EncodingGzip,
		"page.html.zz":   EncodingDeflate,
		"noext":          EncodingIdentity,
		"dir.br/page.ht": EncodingIdentity,
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, want, EncodingForPath(path))
		})
	}
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name     string
		encoding string
		writeAs  string
	}{
		{"Gzip", EncodingGzip, EncodingGzip},
		{"Zlib deflate", EncodingDeflate, EncodingDeflate},
		{"Raw deflate", EncodingDeflate, "raw-deflate"},
		{"Brotli", EncodingBrotli, EncodingBrotli},
		{"Brotli upper case", "BR", EncodingBrotli},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Run twice so the second pass gets a recycled pooled reader.
			for i := 0; i < 2; i++ {
				rc, err := Decode(bytes.NewReader(compressData(t, testMarkup, tc.writeAs)), tc.encoding)
				require.NoError(t, err)
				out, err := io.ReadAll(rc)
				require.NoError(t, err)
				require.NoError(t, rc.Close())
				assert.Equal(t, testMarkup, string(out))
			}
		})
	}

	t.Run("Identity", func(t *testing.T) {
		rc, err := Decode(strings.NewReader(testMarkup), "")
		require.NoError(t, err)
		out, _ := io.ReadAll(rc)
		assert.Equal(t, testMarkup, string(out))
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := Decode(strings.NewReader(testMarkup), "zstd")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported encoding: zstd")
	})

	t.Run("Corrupt gzip header", func(t *testing.T) {
		_, err := Decode(strings.NewReader("not gzip"), EncodingGzip)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gzip initialization error")
	})
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0o600))
		return p
	}

	loader := NewLoader(1<<20, zaptest.NewLogger(t))

	t.Run("Plain file", func(t *testing.T) {
		got, err := loader.Load(write("page.html", []byte(testMarkup)))
		require.NoError(t, err)
		assert.Equal(t, testMarkup, got)
	})

	t.Run("Brotli file", func(t *testing.T) {
		got, err := loader.Load(write("page.html.br", compressData(t, testMarkup, EncodingBrotli)))
		require.NoError(t, err)
		assert.Equal(t, testMarkup, got)
	})

	t.Run("Gzip file", func(t *testing.T) {
		got, err := loader.Load(write("page.html.gz", compressData(t, testMarkup, EncodingGzip)))
		require.NoError(t, err)
		assert.Equal(t, testMarkup, got)
	})

	t.Run("Stdin", func(t *testing.T) {
		l := NewLoader(0, nil)
		l.Stdin = strings.NewReader("<p>from stdin</p>")
		got, err := l.Load(StdinPath)
		require.NoError(t, err)
		assert.Equal(t, "<p>from stdin</p>", got)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := loader.Load(filepath.Join(dir, "absent.html"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Empty file", func(t *testing.T) {
		_, err := loader.Load(write("empty.html", nil))
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("Too large", func(t *testing.T) {
		small := NewLoader(8, nil)
		_, err := small.Load(write("big.html", []byte(testMarkup)))
		assert.ErrorIs(t, err, ErrInputTooLarge)
	})

	t.Run("Exactly at the limit", func(t *testing.T) {
		exact := NewLoader(int64(len(testMarkup)), nil)
		got, err := exact.Load(write("exact.html", []byte(testMarkup)))
		require.NoError(t, err)
		assert.Equal(t, testMarkup, got)
	})

	t.Run("Home directory expansion", func(t *testing.T) {
		t.Setenv("HOME", dir)
		homedir.Reset()
		t.Cleanup(homedir.Reset)
		write("home.html", []byte(testMarkup))

		got, err := loader.Load("~/home.html")
		require.NoError(t, err)
		assert.Equal(t, testMarkup, got)
	})
}

func TestLoader_LoadEncoded(t *testing.T) {
	l := NewLoader(0, nil)
	got, err := l.LoadEncoded(bytes.NewReader(compressData(t, testMarkup, EncodingBrotli)), EncodingBrotli)
	require.NoError(t, err)
	assert.Equal(t, testMarkup, got)

	_, err = l.LoadEncoded(strings.NewReader("x"), "compress")
	assert.Error(t, err)
}
