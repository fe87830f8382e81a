package main

import (
	"flag"
	"fmt"
	"io"

	captainhook "github.com/itsatony/go-captainhook"
)

// stripConfig holds parsed strip command configuration
type stripConfig struct {
	inputPath  string
	outputPath string
}

func runStrip(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseStripFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadInputFailed, err)
		return ExitCodeUsageError
	}

	input, err := readInput(cfg.inputPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadInputFailed, err)
		return ExitCodeInputError
	}

	stripped, err := captainhook.RemoveTags(string(input))
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgParseFailed, err)
		return ExitCodeParseError
	}

	if err := writeOutput(cfg.outputPath, []byte(stripped+FmtNewline), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}
	return ExitCodeSuccess
}

func parseStripFlags(args []string) (*stripConfig, error) {
	fs := flag.NewFlagSet(CmdNameStrip, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &stripConfig{}

	fs.StringVar(&cfg.inputPath, FlagInput, FlagDefaultInput, "")
	fs.StringVar(&cfg.inputPath, FlagInputShort, FlagDefaultInput, "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return cfg, nil
}
