package tabular

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/strata/pkg/compression"
	"github.com/ajitpratap0/strata/pkg/errors"
)

// OpenFile opens path for reading through the configured codec. An empty
// codec name is detected from the extension.
func OpenFile(path, codec string) (io.ReadCloser, error) {
	alg, err := compression.Resolve(codec, path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the pipeline definition
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open "+path)
	}
	r, err := compression.NewReader(f, alg)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &stackedReader{ReadCloser: r, file: f}, nil
}

// CreateFile creates or truncates path for writing through the configured
// codec, creating parent directories when createDirs is set.
func CreateFile(path, codec string, createDirs bool) (io.WriteCloser, error) {
	alg, err := compression.Resolve(codec, path)
	if err != nil {
		return nil, err
	}
	if createDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create directory for "+path)
		}
	}
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the pipeline definition
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create "+path)
	}
	w, err := compression.NewWriter(f, alg, compression.Default)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &stackedWriter{WriteCloser: w, file: f}, nil
}

type stackedReader struct {
	io.ReadCloser
	file *os.File
}

func (s *stackedReader) Close() error {
	err := s.ReadCloser.Close()
	if ferr := s.file.Close(); err == nil {
		err = ferr
	}
	return err
}

type stackedWriter struct {
	io.WriteCloser
	file *os.File
}

// Close flushes the codec before closing the file.
func (s *stackedWriter) Close() error {
	err := s.WriteCloser.Close()
	if ferr := s.file.Close(); err == nil {
		err = ferr
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close "+s.file.Name())
	}
	return nil
}
