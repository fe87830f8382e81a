package main

import (
	"flag"
	"fmt"
	"io"

	captainhook "github.com/itsatony/go-captainhook"
)

// checkConfig holds parsed check command configuration
type checkConfig struct {
	inputPath string
}

func runCheck(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseCheckFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadInputFailed, err)
		return ExitCodeUsageError
	}

	input, err := readInput(cfg.inputPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadInputFailed, err)
		return ExitCodeInputError
	}

	if _, err := captainhook.ParseAll(string(input), true); err != nil {
		fmt.Fprintln(stdout, CheckTextFailure)
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgParseFailed, err)
		return ExitCodeParseError
	}

	fmt.Fprintln(stdout, CheckTextSuccess)
	return ExitCodeSuccess
}

func parseCheckFlags(args []string) (*checkConfig, error) {
	fs := flag.NewFlagSet(CmdNameCheck, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &checkConfig{}

	fs.StringVar(&cfg.inputPath, FlagInput, FlagDefaultInput, "")
	fs.StringVar(&cfg.inputPath, FlagInputShort, FlagDefaultInput, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return cfg, nil
}
