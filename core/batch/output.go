package batch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"
)

// Format is a report output format.
type Format string

// Supported output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// xzMagic is the xz stream header magic.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// OpenInput returns a reader over r that transparently decompresses an xz
// stream. Plain input is returned unchanged.
func OpenInput(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(xzMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read batch input: %w", err)
	}
	if !bytes.Equal(head, xzMagic) {
		return br, nil
	}

	xzReader, err := xz.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	return xzReader, nil
}

// Write renders report to w in the given format.
func Write(w io.Writer, report *Report, format Format) error {
	switch format {
	case FormatText, "":
		if err := writeResultsText(w, report.Results); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "# total=%d failed=%d blake3=%s\n", report.Total, report.Failed, report.Digest)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// writeResultsText writes one tab-separated line per result:
// line, input, and either the converted value or the error.
func writeResultsText(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		var out string
		switch {
		case r.Failed():
			out = "error: " + r.Error
		case r.Op == OpEncode:
			out = r.Numeral
		default:
			out = strconv.Itoa(r.Number)
		}
		if _, err := fmt.Fprintf(bw, "%d\t%s\t%s\n", r.Line, r.Input, out); err != nil {
			return err
		}
	}
	return bw.Flush()
}
