package main

// Command names
const (
	CmdNameParse   = "parse"
	CmdNameCheck   = "check"
	CmdNameStrip   = "strip"
	CmdNameVersion = "version"
	CmdNameHelp    = "help"
)

// Flag names - long form
const (
	FlagInput  = "input"
	FlagOutput = "output"
	FlagFormat = "format"
	FlagNested = "nested"
)

// Flag names - short form
const (
	FlagInputShort  = "i"
	FlagOutputShort = "o"
	FlagFormatShort = "F"
	FlagNestedShort = "n"
)

// Flag default values
const (
	FlagDefaultInput  = "-" // stdin
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeUsageError = 2
	ExitCodeParseError = 3
	ExitCodeInputError = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand    = "unknown command"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgReadInputFailed   = "failed to read input"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgParseFailed       = "parsing failed"
	ErrMsgJSONMarshalFailed = "failed to marshal JSON"
)

// Help text templates
const (
	HelpMainUsage = `captainhook - control tag parsing and inspection CLI

Usage:
    captainhook <command> [options]

Commands:
    parse       List the control tags found in text
    check       Validate text without listing tags
    strip       Remove control tags from text
    version     Show version information
    help        Show help for a command

Use "captainhook help <command>" for more information about a command.`

	HelpParseUsage = `List the control tags found in text

Usage:
    captainhook parse [options]

Options:
    -i, --input <file>      Input file (use "-" for stdin, default)
    -F, --format <format>   Output format: text, json (default: text)
    -n, --nested            Include tags nested inside containers

Examples:
    captainhook parse -i notes.txt
    echo '[refresh /]' | captainhook parse
    captainhook parse -i notes.txt -F json`

	HelpCheckUsage = `Validate text without listing tags

Exits 0 when every control tag in the input is well formed, and with a
parse error code otherwise.

Usage:
    captainhook check [options]

Options:
    -i, --input <file>      Input file (use "-" for stdin, default)

Examples:
    captainhook check -i notes.txt
    echo '[think]...[/think]' | captainhook check`

	HelpStripUsage = `Remove control tags from text

Usage:
    captainhook strip [options]

Options:
    -i, --input <file>      Input file (use "-" for stdin, default)
    -o, --output <file>     Output file (default: stdout)

Examples:
    captainhook strip -i notes.txt
    captainhook strip -i notes.txt -o clean.txt`

	HelpVersionUsage = `Show version information

Usage:
    captainhook version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    captainhook help [command]

Commands:
    parse       Show help for parse command
    check       Show help for check command
    strip       Show help for strip command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "captainhook version %s\nGo: %s"
)

// Check output text
const (
	CheckTextSuccess = "Input is valid"
	CheckTextFailure = "Input has invalid control tags"
)

// Parse output format templates
const (
	ParseTextTagFormat = "%d: [%s] %s"
	ParseTextSummary   = "%d tag(s)"
)

// CLI metadata
const (
	CLIName        = "captainhook"
	CLIDescription = "control tag parsing and inspection CLI"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
