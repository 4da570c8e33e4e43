// Command roman converts between Roman numerals and integers.
//
// Run without arguments it prompts for a numeral on stdin and prints its
// value. Subcommands cover one-shot conversion, batch files and an HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/FocuswithJustin/romanconv/core/batch"
	"github.com/FocuswithJustin/romanconv/core/roman"
	"github.com/FocuswithJustin/romanconv/internal/api"
	"github.com/FocuswithJustin/romanconv/internal/logging"
	"github.com/FocuswithJustin/romanconv/internal/prompt"
	"github.com/FocuswithJustin/romanconv/internal/validation"
)

const version = "0.1.0"

// Streams are the standard streams commands read from and write to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// CLI defines the command-line interface for roman.
type CLI struct {
	LogLevel  string `name:"log-level" help:"Log level" default:"warn" enum:"debug,info,warn,error" env:"ROMAN_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format" default:"text" enum:"text,json" env:"ROMAN_LOG_FORMAT"`

	Prompt  PromptCmd  `cmd:"" default:"1" help:"Prompt for a numeral and print its value"`
	Encode  EncodeCmd  `cmd:"" help:"Convert integers to Roman numerals"`
	Decode  DecodeCmd  `cmd:"" help:"Convert Roman numerals to integers"`
	Check   CheckCmd   `cmd:"" help:"Report whether numerals are valid"`
	Table   TableCmd   `cmd:"" help:"Print the symbol table"`
	Batch   BatchCmd   `cmd:"" help:"Convert a file of numbers and numerals"`
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP API server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// PromptCmd reads numerals from stdin until one is valid.
type PromptCmd struct{}

func (c *PromptCmd) Run(s *Streams) error {
	_, err := prompt.Run(s.In, s.Out)
	if errors.Is(err, prompt.ErrNoInput) {
		fmt.Fprintln(s.Out)
	}
	return err
}

// EncodeCmd converts integers to numerals.
type EncodeCmd struct {
	Numbers   []int `arg:"" help:"Integers to convert (use -- before negative values)"`
	MaxNumber int   `help:"Reject integers above this value (0 = no limit)" default:"0"`
}

func (c *EncodeCmd) Run(s *Streams) error {
	failed := 0
	for _, n := range c.Numbers {
		numeral, err := roman.EncodeMax(n, c.MaxNumber)
		logging.Conversion(context.Background(), "encode", fmt.Sprint(n), numeral, err)
		if err != nil {
			fmt.Fprintf(s.Err, "Error: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintln(s.Out, numeral)
	}
	return conversionFailures(failed, len(c.Numbers))
}

// DecodeCmd converts numerals to integers.
type DecodeCmd struct {
	Numerals []string `arg:"" help:"Roman numerals to convert"`
}

func (c *DecodeCmd) Run(s *Streams) error {
	failed := 0
	for _, numeral := range c.Numerals {
		n, err := roman.Decode(numeral)
		logging.Conversion(context.Background(), "decode", numeral, fmt.Sprint(n), err)
		if err != nil {
			fmt.Fprintf(s.Err, "Error: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintln(s.Out, n)
	}
	return conversionFailures(failed, len(c.Numerals))
}

// CheckCmd validates numerals without printing their values.
type CheckCmd struct {
	Numerals []string `arg:"" help:"Roman numerals to check"`
}

func (c *CheckCmd) Run(s *Streams) error {
	failed := 0
	for _, numeral := range c.Numerals {
		_, err := roman.Decode(numeral)
		var numErr *roman.NumeralError
		switch {
		case err == nil:
			fmt.Fprintf(s.Out, "%s\tvalid\n", numeral)
		case errors.As(err, &numErr):
			fmt.Fprintf(s.Out, "%s\tinvalid: %s\n", numeral, numErr.Reason)
			failed++
		default:
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d numerals are invalid", failed, len(c.Numerals))
	}
	return nil
}

// TableCmd prints the symbol table.
type TableCmd struct{}

func (c *TableCmd) Run(s *Streams) error {
	for _, u := range roman.Units() {
		fmt.Fprintf(s.Out, "%s\t%d\n", u.Numeral, u.Value)
	}
	return nil
}

// BatchCmd converts every line of a file.
type BatchCmd struct {
	Input     string `arg:"" optional:"" default:"-" help:"Input file, plain or xz-compressed (- for stdin)"`
	Format    string `help:"Output format" default:"text" enum:"text,json,yaml"`
	Workers   int    `help:"Concurrent conversions (0 = number of CPUs)" default:"0"`
	MaxNumber int    `help:"Fail lines with integers above this value (0 = no limit)" default:"0"`
	Expect    string `help:"Fail unless the report BLAKE3 digest matches this value"`
	Strict    bool   `help:"Exit non-zero if any line fails to convert"`
}

func (c *BatchCmd) Run(s *Streams) error {
	var src io.Reader = s.In
	if c.Input != "-" {
		if err := validation.ValidatePath(c.Input); err != nil {
			return fmt.Errorf("invalid input path: %w", err)
		}
		f, err := os.Open(c.Input)
		if err != nil {
			return fmt.Errorf("failed to open batch input: %w", err)
		}
		defer f.Close()
		src = f
	}

	input, err := batch.OpenInput(src)
	if err != nil {
		return err
	}
	if input, err = validation.RequireText(input); err != nil {
		return err
	}
	items, err := batch.Parse(input)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := batch.Convert(ctx, items, batch.Options{
		Workers:   c.Workers,
		MaxNumber: c.MaxNumber,
	})
	if err != nil {
		return fmt.Errorf("batch conversion interrupted: %w", err)
	}
	logging.Info("batch_converted", "input", c.Input, "total", report.Total, "failed", report.Failed, "blake3", report.Digest)

	if err := batch.Write(s.Out, report, batch.Format(c.Format)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if c.Expect != "" && c.Expect != report.Digest {
		logging.Warn("digest_mismatch", "input", c.Input, "expected", c.Expect, "blake3", report.Digest)
		return fmt.Errorf("digest mismatch: expected %s, got %s", c.Expect, report.Digest)
	}
	if c.Strict && report.Failed > 0 {
		return conversionFailures(report.Failed, report.Total)
	}
	return nil
}

// ServeCmd starts the HTTP API.
type ServeCmd struct {
	Port          int           `help:"HTTP server port" default:"8080" env:"ROMAN_PORT"`
	CacheTTL      time.Duration `name:"cache-ttl" help:"Lifetime of cached conversions (0 disables caching)" default:"10m" env:"ROMAN_CACHE_TTL"`
	CacheSize     int           `help:"Maximum cached conversions" default:"10000"`
	MaxBatchBytes int64         `help:"Maximum POST /batch body size in bytes" default:"1048576"`
	MaxNumber     int           `help:"Largest integer the API will encode" default:"100000" env:"ROMAN_MAX_NUMBER"`
	Workers       int           `help:"Concurrent conversions per batch request (0 = number of CPUs)" default:"0"`
	AllowedOrigin []string      `help:"CORS allowed origin (repeatable, default allows all)"`
}

func (c *ServeCmd) config() api.Config {
	return api.Config{
		Port:           c.Port,
		Version:        version,
		CacheTTL:       c.CacheTTL,
		CacheSize:      c.CacheSize,
		MaxBatchBytes:  c.MaxBatchBytes,
		MaxNumber:      c.MaxNumber,
		BatchWorkers:   c.Workers,
		AllowedOrigins: c.AllowedOrigin,
	}
}

func (c *ServeCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.Start(ctx, c.config())
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(s *Streams) error {
	fmt.Fprintf(s.Out, "roman version %s\n", version)
	return nil
}

func conversionFailures(failed, total int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d conversions failed", failed, total)
}

func newParser(cli *CLI, s *Streams, options ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("roman"),
		kong.Description("Convert between Roman numerals and integers"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(s.Out, s.Err),
		kong.Bind(s),
	}
	return kong.New(cli, append(opts, options...)...)
}

func configureLogging(cli *CLI, w io.Writer) error {
	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cli.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format, w)
	return nil
}

// run parses args and executes the selected command.
func run(args []string, s *Streams, options ...kong.Option) error {
	var cli CLI
	parser, err := newParser(&cli, s, options...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if err := configureLogging(&cli, s.Err); err != nil {
		return err
	}
	return ctx.Run()
}

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	s := &Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	if err := run(os.Args[1:], s); err != nil {
		fmt.Fprintf(os.Stderr, "roman: error: %v\n", err)
		os.Exit(1)
	}
}
