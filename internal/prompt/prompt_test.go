package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/FocuswithJustin/romanconv/internal/validation"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantValue  int
		wantOutput string
	}{
		{
			name:       "valid first try",
			input:      "MCMXCIV\n",
			wantValue:  1994,
			wantOutput: PromptText + "1994\n",
		},
		{
			name:       "empty line reprompts",
			input:      "\nX\n",
			wantValue:  10,
			wantOutput: PromptText + PromptText + "10\n",
		},
		{
			name:       "invalid character then valid",
			input:      "ABC\nIV\n",
			wantValue:  4,
			wantOutput: PromptText + InvalidCharacterText + "\n" + PromptText + "4\n",
		},
		{
			name:       "non-canonical then valid",
			input:      "IIVI\nVI\n",
			wantValue:  6,
			wantOutput: PromptText + InvalidNumeralText + "\n" + PromptText + "6\n",
		},
		{
			name:       "windows line ending",
			input:      "XII\r\n",
			wantValue:  12,
			wantOutput: PromptText + "12\n",
		},
		{
			name:       "stops after first valid numeral",
			input:      "V\nX\n",
			wantValue:  5,
			wantOutput: PromptText + "5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Run(strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if got != tt.wantValue {
				t.Errorf("Run() = %d, want %d", got, tt.wantValue)
			}
			if out.String() != tt.wantOutput {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOutput)
			}
		})
	}
}

func TestRunEndOfInput(t *testing.T) {
	var out bytes.Buffer
	_, err := Run(strings.NewReader("ASDF\n"), &out)
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("Run() error = %v, want ErrNoInput", err)
	}
	want := PromptText + InvalidCharacterText + "\n" + PromptText
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRunOverlongLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantMsg string
	}{
		{"valid characters", strings.Repeat("M", validation.MaxLineLength+1), InvalidNumeralText},
		{"invalid characters", strings.Repeat("A", validation.MaxLineLength+1), InvalidCharacterText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Run(strings.NewReader(tt.line+"\nXIV\n"), &out)
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if got != 14 {
				t.Errorf("Run() = %d, want 14", got)
			}
			want := PromptText + tt.wantMsg + "\n" + PromptText + "14\n"
			if out.String() != want {
				t.Errorf("output = %q, want %q", out.String(), want)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestRunWriteError(t *testing.T) {
	if _, err := Run(strings.NewReader("X\n"), failingWriter{}); err == nil {
		t.Error("expected write error")
	}
}
