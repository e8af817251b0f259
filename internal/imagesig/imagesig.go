// Package imagesig verifies image payloads by their leading magic bytes.
//
// The same byte-level rule is applied to raw uploads (ValidateFile) and to
// Base64 data URIs found in backup files (ValidateEncoded). Declared content
// types and file extensions are never trusted.
package imagesig

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	// MaxFileSize is the largest upload accepted by ValidateFile (5 MiB).
	MaxFileSize = 5 * 1024 * 1024

	// headerSize is how many bytes ValidateFile reads from an upload.
	headerSize = 16

	// encodedPrefixLen is how many Base64 characters ValidateEncoded decodes.
	// 20 characters yield 15 bytes, enough for every supported signature.
	encodedPrefixLen = 20
)

// Format identifies a recognised image container.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
)

// ContentType returns the media type for the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

var (
	sigPNG  = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	sigJPEG = []byte{0xff, 0xd8, 0xff}
	sigGIF  = []byte("GIF8")
	sigRIFF = []byte("RIFF")
	sigWEBP = []byte("WEBP")
)

// Detect returns the format whose signature prefixes b.
func Detect(b []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(b, sigPNG):
		return FormatPNG, true
	case bytes.HasPrefix(b, sigJPEG):
		return FormatJPEG, true
	case bytes.HasPrefix(b, sigGIF):
		return FormatGIF, true
	case isWebP(b):
		return FormatWebP, true
	}
	return "", false
}

// Classify reports whether b starts with a PNG, JPEG, GIF or WebP signature.
// Trailing bytes are ignored; input shorter than a signature never matches it.
func Classify(b []byte) bool {
	_, ok := Detect(b)
	return ok
}

// isWebP checks the RIFF container tag at 0-3 and the WEBP form type at 8-11.
func isWebP(b []byte) bool {
	if len(b) < 12 {
		return false
	}
	return bytes.Equal(b[0:4], sigRIFF) && bytes.Equal(b[8:12], sigWEBP)
}

// ValidateFile checks an uploaded file of the given size.
//
// Files larger than MaxFileSize are rejected without reading. Otherwise only
// the first 16 bytes are read. A file shorter than 16 bytes is classified on
// whatever it holds. Read errors other than EOF are returned.
func ValidateFile(r io.ReaderAt, size int64) (bool, error) {
	if size > MaxFileSize {
		return false, nil
	}

	buf := make([]byte, headerSize)
	n, err := r.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read image header: %w", err)
	}

	return Classify(buf[:n]), nil
}

// ValidateEncoded checks a Base64 image string, typically a data URI such as
// "data:image/png;base64,iVBORw0...".
//
// An empty (or blank) string is valid and means "no image". Otherwise the text
// after the first comma is taken as the payload (the whole string if there is
// no comma), and only its first 20 characters are decoded and classified.
// Any decode failure classifies as invalid; the failure is logged, not returned.
func ValidateEncoded(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}

	header, err := decodeHeader(s)
	if err != nil {
		slog.Debug("image payload rejected", "error", err)
		return false
	}
	return Classify(header)
}

// decodeHeader decodes the leading Base64 characters of a data URI payload.
func decodeHeader(s string) ([]byte, error) {
	payload := s
	if _, after, found := strings.Cut(s, ","); found {
		payload = after
	}
	if len(payload) > encodedPrefixLen {
		payload = payload[:encodedPrefixLen]
	}

	// A 20-character prefix may end inside the padding; decode unpadded.
	payload = strings.TrimRight(payload, "=")
	out, err := base64.RawStdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	return out, nil
}

// EncodeDataURI builds a Base64 data URI for data with the given content type.
func EncodeDataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
