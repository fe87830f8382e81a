package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	captainhook "github.com/itsatony/go-captainhook"
)

// parseConfig holds parsed parse command configuration
type parseConfig struct {
	inputPath string
	format    string
	nested    bool
}

// tagOutput represents JSON output for one parsed tag
type tagOutput struct {
	Kind       string            `json:"kind"`
	Pattern    string            `json:"pattern"`
	Namespace  string            `json:"namespace,omitempty"`
	Action     string            `json:"action"`
	Params     []string          `json:"params,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Content    string            `json:"content,omitempty"`
	Raw        string            `json:"raw"`
}

// parseOutput represents JSON output for the parse command
type parseOutput struct {
	Tags []tagOutput `json:"tags"`
}

func runParse(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseParseFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFormat, err)
		return ExitCodeUsageError
	}

	input, err := readInput(cfg.inputPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadInputFailed, err)
		return ExitCodeInputError
	}

	tags, err := captainhook.ParseAll(string(input), cfg.nested)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgParseFailed, err)
		return ExitCodeParseError
	}

	if cfg.format == OutputFormatJSON {
		return outputParseJSON(tags, stdout, stderr)
	}
	return outputParseText(tags, stdout)
}

func parseParseFlags(args []string) (*parseConfig, error) {
	fs := flag.NewFlagSet(CmdNameParse, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &parseConfig{}

	fs.StringVar(&cfg.inputPath, FlagInput, FlagDefaultInput, "")
	fs.StringVar(&cfg.inputPath, FlagInputShort, FlagDefaultInput, "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")
	fs.BoolVar(&cfg.nested, FlagNested, false, "")
	fs.BoolVar(&cfg.nested, FlagNestedShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}

func outputParseText(tags []*captainhook.Tag, stdout io.Writer) int {
	for i, tag := range tags {
		fmt.Fprintf(stdout, ParseTextTagFormat+FmtNewline, i+1, tag.Kind.String(), tag.Pattern())
	}
	fmt.Fprintf(stdout, ParseTextSummary+FmtNewline, len(tags))
	return ExitCodeSuccess
}

func outputParseJSON(tags []*captainhook.Tag, stdout, stderr io.Writer) int {
	output := parseOutput{Tags: make([]tagOutput, 0, len(tags))}
	for _, tag := range tags {
		output.Tags = append(output.Tags, tagOutput{
			Kind:       tag.Kind.String(),
			Pattern:    tag.Pattern(),
			Namespace:  tag.Namespace,
			Action:     tag.Action,
			Params:     tag.Params,
			Attributes: tag.Attributes,
			Content:    tag.Content,
			Raw:        tag.Raw,
		})
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgJSONMarshalFailed, err)
		return ExitCodeError
	}
	fmt.Fprintln(stdout, string(jsonBytes))
	return ExitCodeSuccess
}
