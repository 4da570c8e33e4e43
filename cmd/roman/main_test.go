package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FocuswithJustin/romanconv/core/batch"
	"github.com/FocuswithJustin/romanconv/internal/api"
	"github.com/FocuswithJustin/romanconv/internal/prompt"
)

// Test helper functions

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	s := &Streams{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errOut,
	}
	err := run(args, s)
	return out.String(), errOut.String(), err
}

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// Tests for PromptCmd

func TestPromptIsDefault(t *testing.T) {
	out, _, err := runCLI(t, "ASDF\nIIVI\nMCMXCIV\n")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	want := prompt.PromptText + prompt.InvalidCharacterText + "\n" +
		prompt.PromptText + prompt.InvalidNumeralText + "\n" +
		prompt.PromptText + "1994\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestPromptEndOfInput(t *testing.T) {
	_, _, err := runCLI(t, "\n", "prompt")
	if !errors.Is(err, prompt.ErrNoInput) {
		t.Errorf("run() error = %v, want ErrNoInput", err)
	}
}

// Tests for EncodeCmd and DecodeCmd

func TestEncode(t *testing.T) {
	out, _, err := runCLI(t, "", "encode", "4", "1994", "3999")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if out != "IV\nMCMXCIV\nMMMCMXCIX\n" {
		t.Errorf("output = %q", out)
	}
}

func TestEncodeNegative(t *testing.T) {
	out, errOut, err := runCLI(t, "", "encode", "--", "10", "-1")
	if err == nil {
		t.Fatal("expected error for negative input")
	}
	if out != "X\n" {
		t.Errorf("output = %q, want %q", out, "X\n")
	}
	if !strings.Contains(errOut, "below zero") {
		t.Errorf("stderr = %q", errOut)
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("error = %v", err)
	}
}

func TestEncodeMaxNumber(t *testing.T) {
	out, errOut, err := runCLI(t, "", "encode", "--max-number", "3999", "3999", "4000")
	if err == nil {
		t.Fatal("expected error above --max-number")
	}
	if out != "MMMCMXCIX\n" {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(errOut, "exceeds maximum of 3999") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestDecode(t *testing.T) {
	out, _, err := runCLI(t, "", "decode", "I", "IX", "MMXXIV")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if out != "1\n9\n2024\n" {
		t.Errorf("output = %q", out)
	}
}

func TestDecodeInvalid(t *testing.T) {
	out, errOut, err := runCLI(t, "", "decode", "IIVI", "X")
	if err == nil {
		t.Fatal("expected error for IIVI")
	}
	if out != "10\n" {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(errOut, `"IIVI"`) {
		t.Errorf("stderr = %q", errOut)
	}
}

// Tests for CheckCmd and TableCmd

func TestCheck(t *testing.T) {
	out, _, err := runCLI(t, "", "check", "MCMXCIV", "ABC", "IIVI")
	if err == nil {
		t.Fatal("expected error when numerals are invalid")
	}
	want := "MCMXCIV\tvalid\nABC\tinvalid: invalid character\nIIVI\tinvalid: non-canonical numeral\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestCheckAllValid(t *testing.T) {
	if _, _, err := runCLI(t, "", "check", "X", "XL"); err != nil {
		t.Errorf("run() error: %v", err)
	}
}

func TestTable(t *testing.T) {
	out, _, err := runCLI(t, "", "table")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 13 {
		t.Fatalf("got %d lines, want 13", len(lines))
	}
	if lines[0] != "M\t1000" || lines[12] != "I\t1" {
		t.Errorf("unexpected table bounds: %q ... %q", lines[0], lines[12])
	}
}

// Tests for BatchCmd

func TestBatchFromStdin(t *testing.T) {
	out, _, err := runCLI(t, "XIV\n7\n", "batch")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.HasPrefix(out, "1\tXIV\t14\n2\t7\tVII\n# total=2 failed=0 blake3=") {
		t.Errorf("output = %q", out)
	}
}

func TestBatchFromFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "input.txt", "MMXXIV\nIIVI\n")

	out, _, err := runCLI(t, "", "batch", path, "--format", "json", "--workers", "2")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	var report batch.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if report.Total != 2 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestBatchMaxNumber(t *testing.T) {
	out, _, err := runCLI(t, "10\n20000000000\n", "batch", "--max-number", "1000")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(out, "2\t20000000000\terror: ") || !strings.Contains(out, "failed=1") {
		t.Errorf("output = %q", out)
	}
}

func TestBatchStrict(t *testing.T) {
	_, _, err := runCLI(t, "IIVI\n", "batch", "--strict")
	if err == nil {
		t.Error("expected error in strict mode")
	}
}

func TestBatchExpectDigest(t *testing.T) {
	out, _, err := runCLI(t, "X\n", "batch", "--format", "json")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	var report batch.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}

	if _, _, err := runCLI(t, "X\n", "batch", "--expect", report.Digest); err != nil {
		t.Errorf("matching digest rejected: %v", err)
	}
	_, errOut, err := runCLI(t, "XI\n", "batch", "--expect", report.Digest)
	if err == nil {
		t.Error("mismatching digest accepted")
	}
	if !strings.Contains(errOut, "digest_mismatch") {
		t.Errorf("stderr missing mismatch warning: %q", errOut)
	}
}

func TestBatchMissingFile(t *testing.T) {
	_, _, err := runCLI(t, "", "batch", filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

// Tests for ServeCmd and global flags

func TestServeConfig(t *testing.T) {
	var cli CLI
	s := &Streams{In: strings.NewReader(""), Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
	parser, err := newParser(&cli, s)
	if err != nil {
		t.Fatalf("newParser() error: %v", err)
	}
	if _, err := parser.Parse([]string{"serve", "--port", "9090", "--cache-ttl", "30s", "--allowed-origin", "https://a.example"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	cfg := cli.Serve.config()
	if cfg.Port != 9090 || cfg.CacheTTL != 30*time.Second || cfg.Version != version {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.MaxBatchBytes != 1<<20 || cfg.CacheSize != 10000 || cfg.MaxNumber != api.DefaultMaxNumber {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestServePortFromEnv(t *testing.T) {
	t.Setenv("ROMAN_PORT", "7070")

	var cli CLI
	s := &Streams{In: strings.NewReader(""), Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
	parser, err := newParser(&cli, s)
	if err != nil {
		t.Fatalf("newParser() error: %v", err)
	}
	if _, err := parser.Parse([]string{"serve"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cli.Serve.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cli.Serve.Port)
	}
}

func TestDebugLoggingGoesToStderr(t *testing.T) {
	out, errOut, err := runCLI(t, "", "--log-level", "debug", "--log-format", "json", "decode", "XIV")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if out != "14\n" {
		t.Errorf("stdout = %q, want only the result", out)
	}
	if !strings.Contains(errOut, `"msg":"conversion"`) {
		t.Errorf("stderr missing debug log: %q", errOut)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, _, err := runCLI(t, "", "--log-level", "loud", "table"); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if out != "roman version "+version+"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestBatchRejectsBinaryFile(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "data.bin", "X\x00\x00\x00\x01")

	if _, _, err := runCLI(t, "", "batch", path); err == nil {
		t.Error("expected error for binary input")
	}
}
