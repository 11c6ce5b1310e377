// Package input resolves the prompt text and optional input image for a
// generation request from command-line flags and standard input.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/erikhoward/graft/core"
)

var (
	ErrNoPrompt      = errors.New("no prompt provided: use -p or pipe text to stdin")
	ErrImageNotFound = errors.New("input image file not found")
	ErrNotAnImage    = errors.New("file does not appear to be an image")
)

// DefaultMIMEType is used for image bytes whose format is not recognised.
const DefaultMIMEType = "image/png"

// Kind is the classification of raw input bytes.
type Kind int

const (
	// KindText is valid UTF-8 without an image signature.
	KindText Kind = iota + 1
	// KindImage starts with a known image signature or is not UTF-8.
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

type signature struct {
	prefix   []byte
	mimeType string
}

var signatures = []signature{
	{[]byte{0xFF, 0xD8, 0xFF}, "image/jpeg"},
	{[]byte("\x89PNG\r\n\x1a\n"), "image/png"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte("BM"), "image/bmp"},
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}

// SniffMIME returns the image type named by the leading signature of data,
// or DefaultMIMEType when there is none.
func SniffMIME(data []byte) string {
	if isWebP(data) {
		return "image/webp"
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.prefix) {
			return sig.mimeType
		}
	}
	return DefaultMIMEType
}

// Classify reports whether data is an image or a text prompt. Data with a
// known image signature, or that is not valid UTF-8, is an image.
func Classify(data []byte) Kind {
	if isWebP(data) {
		return KindImage
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.prefix) {
			return KindImage
		}
	}
	if !utf8.Valid(data) {
		return KindImage
	}
	return KindText
}

// Not every platform's mime table knows these.
var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".ico":  "image/x-icon",
	".svg":  "image/svg+xml",
	".avif": "image/avif",
	".heic": "image/heic",
}

// MIMEFromPath returns the image MIME type implied by the file extension.
// The second result is false when the extension does not name an image type.
func MIMEFromPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	if t, ok := imageExtensions[ext]; ok {
		return t, true
	}
	t := mime.TypeByExtension(ext)
	if mediaType, _, err := mime.ParseMediaType(t); err == nil && strings.HasPrefix(mediaType, "image/") {
		return mediaType, true
	}
	return "", false
}

// Options are the raw inputs to Resolve.
type Options struct {
	// Prompt is the -p flag value. When set it is authoritative for text.
	Prompt string
	// ImagePath is the -i flag value. When set it wins over image bytes on Stdin.
	ImagePath string
	// Stdin is read once unless it is a terminal or both flags are set.
	Stdin io.Reader
}

// Resolve produces the generation request. It fails before any network
// activity when no prompt is available or the image file is unusable.
func Resolve(opts Options) (*core.GenerationRequest, error) {
	var (
		stdinData []byte
		stdinKind Kind
	)
	if readable(opts) {
		data, err := io.ReadAll(opts.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if len(data) > 0 {
			stdinData = data
			stdinKind = Classify(data)
		}
	}

	req := &core.GenerationRequest{Prompt: strings.TrimSpace(opts.Prompt)}
	if opts.Prompt == "" && stdinKind == KindText {
		req.Prompt = strings.TrimSpace(string(stdinData))
	}
	if req.Prompt == "" {
		return nil, ErrNoPrompt
	}

	switch {
	case opts.ImagePath != "":
		img, err := LoadImage(opts.ImagePath)
		if err != nil {
			return nil, err
		}
		req.Image = img
	case stdinKind == KindImage:
		req.Image = &core.ImageInput{Data: stdinData, MIMEType: SniffMIME(stdinData)}
	}
	return req, nil
}

// LoadImage reads an image file, taking its type from the extension.
func LoadImage(path string) (*core.ImageInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("stat input image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotAnImage, path)
	}
	mimeType, ok := MIMEFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input image: %w", err)
	}
	return &core.ImageInput{Data: data, MIMEType: mimeType}, nil
}

func readable(opts Options) bool {
	if opts.Stdin == nil {
		return false
	}
	if opts.Prompt != "" && opts.ImagePath != "" {
		return false
	}
	return !IsTerminal(opts.Stdin)
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
