package core

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Outcome is the interpretation of a ChatResponse. It is one of
// StructuredImages, ContentImage, TextOnly or Malformed.
type Outcome interface {
	outcome()
}

// StructuredImages is returned when the provider enumerated images explicitly.
type StructuredImages struct {
	Images []ImageResult
	// Skipped counts enumerated entries that carried no URL.
	Skipped int
}

// ContentImage is returned when no images were enumerated but the message
// content is, or contains, an image URL.
type ContentImage struct {
	URL     string
	Content string
}

// TextOnly is returned for a plain text completion.
type TextOnly struct {
	Text string
}

// Malformed is returned when the response lacks the fields needed to
// interpret it.
type Malformed struct {
	Reason string
}

func (StructuredImages) outcome() {}
func (ContentImage) outcome()     {}
func (TextOnly) outcome()         {}
func (Malformed) outcome()        {}

// Err returns the failure as an error wrapping ErrMalformedResponse.
func (m Malformed) Err() error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, m.Reason)
}

// ImageKind tells how an ImageResult carries its bytes.
type ImageKind int

const (
	// ImageInline images carry their bytes in a data URL.
	ImageInline ImageKind = iota + 1
	// ImageRemote images must be downloaded from URL.
	ImageRemote
)

func (k ImageKind) String() string {
	switch k {
	case ImageInline:
		return "inline"
	case ImageRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// ImageResult is one image produced by a response.
type ImageResult struct {
	Kind     ImageKind
	MIMEType string
	// Data is the encoded payload of an inline image.
	Data   string
	Base64 bool
	// URL is the location of a remote image.
	URL string
}

// InlineImage builds an inline ImageResult from raw bytes.
func InlineImage(data []byte, mimeType string) ImageResult {
	return ImageResult{
		Kind:     ImageInline,
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
		Base64:   true,
	}
}

// RemoteImage builds a remote ImageResult.
func RemoteImage(u string) ImageResult {
	return ImageResult{Kind: ImageRemote, URL: u}
}

// Bytes decodes the payload of an inline image.
func (r ImageResult) Bytes() ([]byte, error) {
	if r.Kind != ImageInline {
		return nil, fmt.Errorf("%s image has no inline payload", r.Kind)
	}
	if !r.Base64 {
		s, err := url.PathUnescape(r.Data)
		if err != nil {
			return nil, fmt.Errorf("decode data URL: %w", err)
		}
		return []byte(s), nil
	}
	payload := strings.Map(func(c rune) rune {
		switch c {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return c
	}, r.Data)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some providers drop the padding.
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return data, nil
}

// Interpret inspects a response and classifies it. Only the first choice is
// considered. Probes run in priority order: enumerated images, an image URL
// in the content, plain text.
func Interpret(resp *ChatResponse) Outcome {
	if resp == nil || len(resp.Choices) == 0 {
		return Malformed{Reason: "response has no choices"}
	}
	msg := resp.Choices[0].Message
	if msg == nil {
		return Malformed{Reason: "first choice has no message"}
	}

	if len(msg.Images) > 0 {
		out := StructuredImages{}
		for _, img := range msg.Images {
			ref := strings.TrimSpace(img.URL)
			if ref == "" {
				out.Skipped++
				continue
			}
			if mimeType, payload, isBase64, ok := ParseDataURL(ref); ok {
				out.Images = append(out.Images, ImageResult{
					Kind:     ImageInline,
					MIMEType: mimeType,
					Data:     payload,
					Base64:   isBase64,
				})
				continue
			}
			out.Images = append(out.Images, RemoteImage(ref))
		}
		if len(out.Images) > 0 {
			return out
		}
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return Malformed{Reason: "response contains neither images nor content"}
	}
	if isBareURL(content) {
		return ContentImage{URL: content, Content: msg.Content}
	}
	if u := ExtractImageURL(content); u != "" {
		return ContentImage{URL: u, Content: msg.Content}
	}
	return TextOnly{Text: msg.Content}
}

// ParseDataURL splits a data URL into its media type and payload.
// A missing media type defaults to image/png.
func ParseDataURL(s string) (mimeType, payload string, isBase64, ok bool) {
	if len(s) < 5 || !strings.EqualFold(s[:5], "data:") {
		return "", "", false, false
	}
	header, payload, found := strings.Cut(s[5:], ",")
	if !found {
		return "", "", false, false
	}
	params := strings.Split(header, ";")
	mimeType = strings.TrimSpace(params[0])
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	return mimeType, payload, isBase64, true
}

var (
	// Brackets end a URL so adjacent markdown links stay separate.
	urlPattern      = regexp.MustCompile(`https?://[^\s"'<>()\[\]` + "`" + `]+`)
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
)

// ExtractImageURL returns the first URL in text whose path ends in an image
// extension, or "" if there is none.
func ExtractImageURL(text string) string {
	for _, candidate := range urlPattern.FindAllString(text, -1) {
		candidate = strings.TrimRight(candidate, ".,;:!?)]}*")
		u, err := url.Parse(candidate)
		if err != nil || u.Host == "" {
			continue
		}
		if hasImageExtension(u.Path) {
			return candidate
		}
	}
	return ""
}

func hasImageExtension(p string) bool {
	p = strings.ToLower(p)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// isBareURL reports whether s is a single http(s) URL with nothing around it.
func isBareURL(s string) bool {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return !strings.ContainsAny(s, " \t\r\n")
}
