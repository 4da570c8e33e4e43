// Package batch converts many numbers and numerals in one pass.
//
// Input is line oriented. Each line holds at most one token: an integer to
// encode or a numeral to decode. Blank lines and lines starting with '#'
// are skipped.
package batch

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/romanconv/internal/validation"
)

// previewLen is how much of an overlong line is kept in its Item.
const previewLen = 32

// Op is the conversion applied to an item.
type Op string

const (
	// OpEncode converts an integer to a numeral.
	OpEncode Op = "encode"
	// OpDecode converts a numeral to an integer.
	OpDecode Op = "decode"
)

// Item is one parsed input line.
type Item struct {
	Line   int
	Input  string
	Op     Op
	Number int   // Set for OpEncode
	Err    error // Set when the line could not be parsed
}

// LineError describes an input line that does not hold a single token.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

//nolint:govet // participle grammar tags are not standard struct tags
type lineGrammar struct {
	Integer *string `  @Int`
	Numeral *string `| @Word`
}

// lineLexer splits a line into tokens. Int needs a word boundary so that
// "12AB" lexes as one Word rather than Int followed by Word.
var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Int", Pattern: `-?[0-9]+\b`},
	{Name: "Word", Pattern: `[^\s#]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var lineParser = participle.MustBuild[lineGrammar](
	participle.Lexer(lineLexer),
	participle.Elide("Whitespace", "Comment"),
)

// ParseLine parses a single line. ok is false for blank and comment lines.
func ParseLine(n int, text string) (item Item, ok bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Item{}, false
	}

	item = Item{Line: n, Input: trimmed}

	parsed, err := lineParser.ParseString("", trimmed)
	if err != nil {
		item.Err = &LineError{Line: n, Text: trimmed, Err: err}
		return item, true
	}

	switch {
	case parsed.Integer != nil:
		number, err := strconv.Atoi(*parsed.Integer)
		if err != nil {
			item.Err = &LineError{Line: n, Text: trimmed, Err: err}
			return item, true
		}
		item.Input = *parsed.Integer
		item.Op = OpEncode
		item.Number = number
	case parsed.Numeral != nil:
		item.Input = *parsed.Numeral
		item.Op = OpDecode
	}
	return item, true
}

// Parse reads every line of r. Unparseable lines, including lines longer
// than validation.MaxLineLength, are returned as items with Err set; the
// returned error is only for read failures.
func Parse(r io.Reader) ([]Item, error) {
	var items []Item

	lines := validation.NewLineReader(r, validation.MaxLineLength)
	for n := 1; ; n++ {
		text, truncated, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read batch input: %w", err)
		}

		if truncated {
			preview := strings.TrimSpace(text[:min(len(text), previewLen)]) + "..."
			items = append(items, Item{
				Line:  n,
				Input: preview,
				Err:   &LineError{Line: n, Text: preview, Err: validation.ErrLineTooLong},
			})
			continue
		}
		if item, ok := ParseLine(n, text); ok {
			items = append(items, item)
		}
	}
}
