package batch

import (
	"bytes"
	"context"
	"encoding/hex"
	"runtime"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/romanconv/core/roman"
)

// Options controls a batch run.
type Options struct {
	// Workers bounds concurrent conversions. Zero means GOMAXPROCS.
	Workers int
	// MaxNumber is the largest integer encoded. Larger ones fail with
	// roman.ErrOutOfRange. Zero means no bound.
	MaxNumber int
}

// Result is the outcome of converting one item.
type Result struct {
	Line    int    `json:"line" yaml:"line"`
	Input   string `json:"input" yaml:"input"`
	Op      Op     `json:"op,omitempty" yaml:"op,omitempty"`
	Numeral string `json:"numeral" yaml:"numeral"`
	Number  int    `json:"number" yaml:"number"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the conversion failed.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Report is the outcome of a batch run, in input order.
type Report struct {
	Results []Result `json:"results" yaml:"results"`
	Total   int      `json:"total" yaml:"total"`
	Failed  int      `json:"failed" yaml:"failed"`
	// Digest is the BLAKE3-256 of the text rendering of Results.
	Digest string `json:"digest" yaml:"digest"`
}

// Convert converts every item. Per-item failures are recorded in the report;
// the returned error is only for cancellation.
func Convert(ctx context.Context, items []Item, opts Options) (*Report, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = convertItem(item, opts.MaxNumber)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Results: results,
		Total:   len(results),
	}
	for _, r := range results {
		if r.Failed() {
			report.Failed++
		}
	}
	report.Digest = Digest(results)
	return report, nil
}

func convertItem(item Item, maxNumber int) Result {
	res := Result{
		Line:  item.Line,
		Input: item.Input,
		Op:    item.Op,
	}

	if item.Err != nil {
		res.Error = item.Err.Error()
		return res
	}

	switch item.Op {
	case OpEncode:
		numeral, err := roman.EncodeMax(item.Number, maxNumber)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Number = item.Number
		res.Numeral = numeral
	case OpDecode:
		number, err := roman.Decode(item.Input)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Numeral = item.Input
		res.Number = number
	}
	return res
}

// Digest returns the hex BLAKE3-256 of the text rendering of results.
func Digest(results []Result) string {
	var buf bytes.Buffer
	_ = writeResultsText(&buf, results)
	sum := blake3.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
