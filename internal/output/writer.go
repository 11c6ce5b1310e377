package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/erikhoward/graft/core"
)

var (
	// ErrNoImages is returned when there is nothing to save.
	ErrNoImages = errors.New("response contained no images")
	// ErrNothingWritten is returned when every image failed to save.
	ErrNothingWritten = errors.New("no image could be saved")
	// ErrFetcherRequired is returned for a remote image when the Writer
	// has no Fetcher.
	ErrFetcherRequired = errors.New("remote image requires a fetcher")
)

var (
	successStyle = color.New(color.FgGreen)
	failureStyle = color.New(color.FgRed)
	mutedStyle   = color.New(color.FgHiBlack)
)

// Fetcher streams a remote image.
type Fetcher interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Summary reports what Write delivered.
type Summary struct {
	Requested int
	Written   int
	Files     []string
	Stdout    bool
}

// Writer saves images according to a Target. Status lines go to stdout
// unless stdout carries image bytes; failures always go to stderr.
type Writer struct {
	stdout  io.Writer
	stderr  io.Writer
	fetcher Fetcher
	logger  *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithFetcher sets the downloader for remote images.
func WithFetcher(f Fetcher) Option {
	return func(w *Writer) { w.fetcher = f }
}

// WithLogger sets the logger for debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWriter returns a Writer over the given streams.
func NewWriter(stdout, stderr io.Writer, opts ...Option) *Writer {
	w := &Writer{
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write delivers images under target. A failure on one file does not stop
// the others; an error is returned only when nothing was delivered.
func (w *Writer) Write(ctx context.Context, images []core.ImageResult, target Target) (Summary, error) {
	sum := Summary{Requested: len(images)}
	if len(images) == 0 {
		return sum, ErrNoImages
	}
	if target.IsStdout() {
		return w.writeStdout(ctx, images, sum)
	}

	for i, img := range images {
		name := target.Filename(i)
		if err := w.save(ctx, img, name); err != nil {
			w.logger.Debug("image not saved", "index", i+1, "file", name, "error", err)
			if img.Kind == core.ImageRemote {
				failureStyle.Fprintf(w.stderr, "❌ Failed to download image %d from: %s (%v)\n", i+1, img.URL, err)
			} else {
				failureStyle.Fprintf(w.stderr, "❌ Failed to save image %d: %v\n", i+1, err)
			}
			continue
		}
		sum.Written++
		sum.Files = append(sum.Files, name)
		successStyle.Fprintf(w.stdout, "✅ Image %d saved successfully: %s\n", i+1, name)
	}

	if sum.Written == 0 {
		return sum, fmt.Errorf("%w (%d attempted)", ErrNothingWritten, sum.Requested)
	}
	return sum, nil
}

func (w *Writer) writeStdout(ctx context.Context, images []core.ImageResult, sum Summary) (Summary, error) {
	if extra := len(images) - 1; extra > 0 {
		w.logger.Debug("stdout receives only the first image", "dropped", extra)
	}
	img := images[0]
	if err := w.deliver(ctx, img, w.stdout); err != nil {
		if img.Kind == core.ImageRemote {
			failureStyle.Fprintf(w.stderr, "❌ Failed to download image: %v\n", err)
		}
		return sum, fmt.Errorf("write image to stdout: %w", err)
	}
	sum.Written = 1
	sum.Stdout = true
	mutedStyle.Fprintln(w.stderr, "Image output to stdout")
	return sum, nil
}

// save writes one image to name, removing the file if the write fails.
func (w *Writer) save(ctx context.Context, img core.ImageResult, name string) (err error) {
	if img.Kind == core.ImageRemote {
		mutedStyle.Fprintf(w.stdout, "Downloading image to: %s\n", name)
	}
	// Decode before creating the file so a bad payload leaves nothing behind.
	inline := img.Kind == core.ImageInline
	var data []byte
	if inline {
		if data, err = img.Bytes(); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if inline {
		return os.WriteFile(name, data, 0644)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(name)
		}
	}()
	return w.deliver(ctx, img, f)
}

// deliver copies the image bytes to dst, streaming remote images.
func (w *Writer) deliver(ctx context.Context, img core.ImageResult, dst io.Writer) error {
	switch img.Kind {
	case core.ImageInline:
		data, err := img.Bytes()
		if err != nil {
			return err
		}
		_, err = dst.Write(data)
		return err
	case core.ImageRemote:
		if w.fetcher == nil {
			return ErrFetcherRequired
		}
		body, err := w.fetcher.Download(ctx, img.URL)
		if err != nil {
			return err
		}
		defer body.Close()
		n, err := io.Copy(dst, body)
		if err != nil {
			return fmt.Errorf("download interrupted after %d bytes: %w", n, err)
		}
		w.logger.Debug("image downloaded", "url", img.URL, "bytes", n)
		return nil
	default:
		return fmt.Errorf("unsupported image kind %s", img.Kind)
	}
}
