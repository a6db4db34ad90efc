// internal/source/source.go
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
)

// StdinPath names standard input as a source.
const StdinPath = "-"

var (
	// ErrEmptyInput is returned when a source yields no bytes at all.
	ErrEmptyInput = errors.New("input is empty")
	// ErrInputTooLarge is returned when a decoded document exceeds the loader's cap.
	ErrInputTooLarge = errors.New("input exceeds the configured size limit")
)

// Loader reads markup documents from files or standard input.
type Loader struct {
	// MaxBytes caps the decoded size of one document. Zero disables the cap.
	MaxBytes int64
	// Stdin is read for StdinPath. Defaults to os.Stdin.
	Stdin io.Reader

	log *zap.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(maxBytes int64, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{MaxBytes: maxBytes, Stdin: os.Stdin, log: log.Named("source")}
}

// Load reads the document at path. "~" is expanded to the home directory and
// the encoding is inferred from the file extension.
func (l *Loader) Load(path string) (string, error) {
	if path == StdinPath {
		return l.read(io.NopCloser(l.Stdin), EncodingIdentity, "stdin")
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", expanded, err)
	}
	return l.read(f, EncodingForPath(expanded), expanded)
}

// LoadEncoded reads r using an explicit encoding.
func (l *Loader) LoadEncoded(r io.Reader, encoding string) (string, error) {
	return l.read(r, encoding, "reader")
}

func (l *Loader) read(r io.Reader, encoding, name string) (string, error) {
	body, err := Decode(r, encoding)
	if err != nil {
		if c, ok := r.(io.Closer); ok {
			_ = c.Close()
		}
		return "", fmt.Errorf("failed to decode %s: %w", name, err)
	}
	defer body.Close()

	var limited io.Reader = body
	if l.MaxBytes > 0 {
		limited = io.LimitReader(body, l.MaxBytes+1)
	}
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if l.MaxBytes > 0 && int64(len(data)) > l.MaxBytes {
		return "", fmt.Errorf("%s: %w (%d bytes)", name, ErrInputTooLarge, l.MaxBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrEmptyInput)
	}

	l.log.Debug("Source loaded",
		zap.String("source", name),
		zap.String("encoding", encoding),
		zap.Int("bytes", len(data)))
	return string(data), nil
}
