// Package validation guards input before it reaches the converter:
// user-supplied paths are checked for dangerous characters, content is
// rejected when it is clearly not line-oriented text, and lines are read
// with a length cap.
package validation

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const (
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxLineLength is the longest line LineReader returns in full.
	MaxLineLength = 64 * 1024
	// sniffLen is how much input is inspected by RequireText.
	sniffLen = 512
)

// Common validation errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrBinaryInput      = errors.New("input is not text")
	ErrLineTooLong      = errors.New("line too long")
)

// ValidatePath checks a user-supplied path for length limits, null bytes
// and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// RequireText inspects the start of r and returns ErrBinaryInput if it does
// not look like text. The returned reader yields the full input, including
// the inspected bytes. Empty input is accepted.
func RequireText(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(head) > 0 && !isLikelyText(head) {
		return nil, ErrBinaryInput
	}
	return br, nil
}

// isLikelyText reports whether buf is mostly printable ASCII or UTF-8.
func isLikelyText(buf []byte) bool {
	// Null bytes are a strong indicator of binary content
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for _, b := range buf {
		if b >= 0x20 && b <= 0x7e || b == '\t' || b == '\n' || b == '\r' {
			printable++
		} else if b < 0x20 {
			control++
		}
		// UTF-8 lead and continuation bytes are neutral
	}

	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}

// LineReader reads newline-terminated lines with a length cap. Unlike
// bufio.Scanner it does not fail on a long line: the line is cut at the cap,
// the rest of it is discarded, and the caller is told it was truncated.
type LineReader struct {
	br  *bufio.Reader
	max int
}

// NewLineReader returns a LineReader over r. A max of zero or less means
// MaxLineLength.
func NewLineReader(r io.Reader, max int) *LineReader {
	if max <= 0 {
		max = MaxLineLength
	}
	return &LineReader{br: bufio.NewReader(r), max: max}
}

// ReadLine returns the next line without its "\n" or "\r\n" terminator.
// truncated is true when the line was longer than the cap; line then holds
// its first max bytes. At end of input it returns io.EOF.
func (lr *LineReader) ReadLine() (line string, truncated bool, err error) {
	var buf []byte
	n := 0
	for {
		chunk, readErr := lr.br.ReadSlice('\n')
		n += len(chunk)
		if room := lr.max - len(buf); room > 0 {
			buf = append(buf, chunk[:min(len(chunk), room)]...)
		}

		switch {
		case readErr == nil:
			n--
		case errors.Is(readErr, bufio.ErrBufferFull):
			continue
		case errors.Is(readErr, io.EOF):
			if n == 0 {
				return "", false, io.EOF
			}
		default:
			return "", false, readErr
		}
		break
	}

	buf = bytes.TrimSuffix(buf, []byte("\n"))
	if n > lr.max {
		return string(buf), true, nil
	}
	buf = bytes.TrimSuffix(buf, []byte("\r"))
	return string(buf), false, nil
}
