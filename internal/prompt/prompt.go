// Package prompt implements the interactive numeral prompt.
package prompt

import (
	"errors"
	"fmt"
	"io"

	"github.com/FocuswithJustin/romanconv/core/roman"
	"github.com/FocuswithJustin/romanconv/internal/logging"
	"github.com/FocuswithJustin/romanconv/internal/validation"
)

// Messages written to the user.
const (
	PromptText           = "Please enter a Roman Numeral: "
	InvalidCharacterText = "Input contains invalid character (valid characters are: {I, V, X, L, C, D, M})"
	InvalidNumeralText   = "Input is not valid Roman Numeral"
)

// ErrNoInput is returned when input ends before a valid numeral was read.
var ErrNoInput = errors.New("no valid roman numeral entered")

// Run prompts on w and reads lines from r until one decodes. It prints the
// decoded value and returns it. Lines longer than validation.MaxLineLength
// are rejected like any other invalid input.
func Run(r io.Reader, w io.Writer) (int, error) {
	lines := validation.NewLineReader(r, validation.MaxLineLength)
	for {
		if _, err := fmt.Fprint(w, PromptText); err != nil {
			return 0, err
		}
		input, truncated, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			return 0, ErrNoInput
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read input: %w", err)
		}
		if input == "" {
			continue
		}

		if truncated {
			logging.Debug("prompt_rejected", "input_prefix", input[:min(len(input), 32)], "reason", validation.ErrLineTooLong.Error())
			msg := InvalidNumeralText
			if roman.HasInvalidCharacter(input) {
				msg = InvalidCharacterText
			}
			if _, err := fmt.Fprintln(w, msg); err != nil {
				return 0, err
			}
			continue
		}

		if roman.HasInvalidCharacter(input) {
			logging.Debug("prompt_rejected", "input", input, "reason", roman.ReasonInvalidCharacter)
			if _, err := fmt.Fprintln(w, InvalidCharacterText); err != nil {
				return 0, err
			}
			continue
		}

		value, err := roman.Decode(input)
		if err != nil {
			logging.Debug("prompt_rejected", "input", input, "error", err.Error())
			if _, err := fmt.Fprintln(w, InvalidNumeralText); err != nil {
				return 0, err
			}
			continue
		}

		if _, err := fmt.Fprintln(w, value); err != nil {
			return 0, err
		}
		return value, nil
	}
}
