// Package main synthesizes a single file from the command line and prints the
// resulting study units as JSON.
//
// Usage:
//
//	synth [-extend units.json] [-unit name] <file>
//
// With -extend the units in units.json (a synthesis result as printed by a
// previous run) are sent as context and the output is those units with the
// newly generated flashcards appended. -unit restricts extension to one unit.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/extract"
	"github.com/phrazzld/scry-study/internal/platform/llm"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/synthesis"
)

var errUsage = errors.New("usage: synth [-extend units.json] [-unit name] <file>")

type options struct {
	file       string
	extendFile string
	unit       string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "synth: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("synth", flag.ContinueOnError)
	fs.StringVar(&opts.extendFile, "extend", "", "JSON synthesis result to extend")
	fs.StringVar(&opts.unit, "unit", "", "extend only the named unit (requires -extend)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		return opts, errUsage
	}
	if opts.unit != "" && opts.extendFile == "" {
		return opts, fmt.Errorf("-unit requires -extend: %w", errUsage)
	}
	opts.file = fs.Arg(0)
	return opts, nil
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := config.LoadSynthesis()
	if err != nil {
		return err
	}

	// stdout carries the result, so logs go to stderr
	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel, Output: os.Stderr})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}
	text, err := extract.Text(data)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}

	gen, err := llm.NewGenerator(ctx, log, cfg.LLM)
	if err != nil {
		return err
	}
	synth, err := synthesis.NewSynthesizer(gen, log,
		synthesis.WithSegmentSize(cfg.Synthesis.SegmentSize),
		synthesis.WithConcurrency(cfg.Synthesis.Concurrency),
		synthesis.WithDefaultLanguage(cfg.Synthesis.DefaultLanguage),
	)
	if err != nil {
		return err
	}

	var result *domain.SynthesisResult
	if opts.extendFile == "" {
		result, err = synth.Synthesize(ctx, text)
	} else {
		result, err = extendResult(ctx, synth, text, opts)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func extendResult(
	ctx context.Context,
	synth *synthesis.Synthesizer,
	text string,
	opts options,
) (*domain.SynthesisResult, error) {
	prior, err := readResult(opts.extendFile)
	if err != nil {
		return nil, err
	}

	existing := prior.Units
	if opts.unit != "" {
		idx := domain.FindUnit(prior.Units, opts.unit)
		if idx < 0 {
			return nil, fmt.Errorf("unit %q not found in %s", opts.unit, opts.extendFile)
		}
		existing = prior.Units[idx : idx+1]
	}

	generated, err := synth.Extend(ctx, text, existing)
	if err != nil {
		return nil, err
	}

	incoming := generated.Units
	if opts.unit != "" {
		idx := domain.FindUnit(incoming, opts.unit)
		if idx < 0 {
			incoming = nil
		} else {
			incoming = incoming[idx : idx+1]
		}
	}

	return &domain.SynthesisResult{
		Units:    domain.AppendFlashcards(prior.Units, incoming),
		Language: prior.Language,
	}, nil
}

func readResult(path string) (*domain.SynthesisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var result domain.SynthesisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, u := range result.Units {
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("%s: unit %q: %w", path, u.Name, err)
		}
	}
	return &result, nil
}
