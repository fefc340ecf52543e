// Package edgelist reads and writes graphs as delimited node and edge lists,
// optionally gzip or snappy compressed.
package edgelist

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

// Compression is the codec of a file, chosen by its extension.
type Compression int

const (
	None Compression = iota
	Gzip
	Snappy
)

// CompressionFor returns the codec implied by the extension of path.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".sz":
		return Snappy
	default:
		return None
	}
}

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Snappy:
		return "snappy"
	default:
		return "none"
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i].Close())
	}
	return errors.Join(errs...)
}

// Open returns a reader of the decompressed content of path. Plain files are
// memory-mapped.
func Open(path string) (io.ReadCloser, error) {
	switch CompressionFor(path) {
	case Gzip:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		zr, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []io.Closer{f, zr}}, nil
	case Snappy:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: snappy.NewReader(bufio.NewReader(f)), closers: []io.Closer{f}}, nil
	default:
		m, err := mmap.Open(path)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: io.NewSectionReader(m, 0, int64(m.Len())), closers: []io.Closer{m}}, nil
	}
}

type writeCloser struct {
	io.Writer
	flush func() error
	file  *os.File
}

func (w *writeCloser) Close() error {
	err := w.flush()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create creates path and returns a writer compressing by its extension.
// Close flushes the codec and closes the file.
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	switch CompressionFor(path) {
	case Gzip:
		zw := gzip.NewWriter(f)
		return &writeCloser{Writer: zw, flush: zw.Close, file: f}, nil
	case Snappy:
		sw := snappy.NewBufferedWriter(f)
		return &writeCloser{Writer: sw, flush: sw.Close, file: f}, nil
	default:
		bw := bufio.NewWriter(f)
		return &writeCloser{Writer: bw, flush: bw.Flush, file: f}, nil
	}
}
