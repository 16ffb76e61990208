// Package compression wraps the stream codecs used for file and object
// connectors.
//
// # Overview
//
// Destinations wrap their output in NewWriter and sources wrap their input
// in NewReader; both are plain io streams so encoders never need to know
// which codec is in use:
//   - Gzip, Deflate: wide compatibility, good compression
//   - Zstd: best compression ratio, good speed
//   - Snappy, S2: fastest, moderate compression
//   - LZ4: extremely fast, decent compression
//
// # Basic Usage
//
//	alg, err := compression.Parse(cfg.Compression)
//	w, err := compression.NewWriter(file, alg, compression.Default)
//	defer w.Close()
//
// When no algorithm is configured, ForPath picks one from the file
// extension (data.csv.gz reads as gzip).
package compression

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/strata/pkg/errors"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents snappy framed compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// Deflate represents raw deflate compression
	Deflate Algorithm = "deflate"
)

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

var extensions = map[Algorithm]string{
	Gzip:    ".gz",
	Snappy:  ".sz",
	LZ4:     ".lz4",
	Zstd:    ".zst",
	S2:      ".s2",
	Deflate: ".deflate",
}

// Algorithms lists every supported algorithm, None included.
func Algorithms() []Algorithm {
	return []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate}
}

// Parse resolves a configured algorithm name. The empty string is None.
func Parse(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case "":
		return None, nil
	case "gz":
		return Gzip, nil
	case "zstandard":
		return Zstd, nil
	case None, Gzip, Snappy, LZ4, Zstd, S2, Deflate:
		return a, nil
	default:
		return None, errors.Newf(errors.ErrorTypeConfig,
			"unsupported compression algorithm %q (available: %v)", name, Algorithms())
	}
}

// ForPath returns the algorithm implied by a file extension, or None.
func ForPath(path string) Algorithm {
	ext := strings.ToLower(filepath.Ext(path))
	for alg, e := range extensions {
		if e == ext {
			return alg
		}
	}
	if ext == ".snappy" {
		return Snappy
	}
	return None
}

// Resolve picks the configured algorithm, falling back to the path
// extension when none is configured.
func Resolve(configured, path string) (Algorithm, error) {
	if strings.TrimSpace(configured) == "" {
		return ForPath(path), nil
	}
	return Parse(configured)
}

// Extension returns the conventional file suffix, empty for None.
func (a Algorithm) Extension() string {
	return extensions[a]
}

// NewWriter wraps w so that everything written to the result is compressed.
// Closing the result flushes the codec but does not close w.
func NewWriter(w io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriterLevel(w, mapGzipLevel(level))
	case Deflate:
		return flate.NewWriter(w, mapDeflateLevel(level))
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case S2:
		return s2.NewWriter(w), nil
	case LZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid lz4 level")
		}
		return zw, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm %q", alg)
	}
}

// NewReader wraps r so that reads return decompressed bytes. Closing the
// result releases codec state but does not close r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "invalid gzip stream")
		}
		return zr, nil
	case Deflate:
		return flate.NewReader(r), nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "invalid zstd stream")
		}
		return zr.IOReadCloser(), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm %q", alg)
	}
}

// Compress compresses data in memory.
func Compress(data []byte, alg Algorithm, level Level) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, alg, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%s compress: %w", alg, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s compress: %w", alg, err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte, alg Algorithm) ([]byte, error) {
	r, err := NewReader(bytes.NewReader(data), alg)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(r) //nolint:gosec // G110: inputs are local files and objects chosen by the operator
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, fmt.Sprintf("%s decompress", alg))
	}
	return out, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapDeflateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
