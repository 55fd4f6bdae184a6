package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/asyncapi-tools/hoist"
	"github.com/asyncapi-tools/hoist/internal/cliutil"
	"github.com/asyncapi-tools/hoist/internal/fileutil"
	"github.com/asyncapi-tools/hoist/internal/mcpserver"
	"github.com/asyncapi-tools/hoist/internal/pathutil"
	"go.yaml.in/yaml/v4"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		cliutil.Writef(os.Stdout, "hoist v%s\n", hoist.Version())
	case "help", "-h", "--help":
		printUsage()
	case "normalize":
		if err := handleNormalize(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := handleMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// normalizeFlags contains flags for the normalize command.
type normalizeFlags struct {
	in      string
	out     string
	workDir string
	verbose bool
}

func setupNormalizeFlags() (*flag.FlagSet, *normalizeFlags) {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	flags := &normalizeFlags{}

	fs.StringVar(&flags.in, "in", "", "path to the input document (YAML or JSON)")
	fs.StringVar(&flags.out, "out", "", "path to write the normalized document")
	fs.StringVar(&flags.workDir, "dir", "", "working directory for on-demand file resolution (default: input file's directory)")
	fs.BoolVar(&flags.verbose, "v", false, "attach a debug-level logger")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: hoist normalize -in <file> -out <file> [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Hoist inline schemas into components.schemas, resolve discriminator\n")
		_, _ = fmt.Fprintf(output, "mappings and channel references, and merge equivalent duplicates.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  hoist normalize -in asyncapi.yaml -out asyncapi.normalized.yaml\n")
		_, _ = fmt.Fprintf(output, "  hoist normalize -in asyncapi.yaml -out asyncapi.normalized.yaml -dir ./schemas -v\n")
	}

	return fs, flags
}

func handleNormalize(args []string) error {
	fs, flags := setupNormalizeFlags()

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if flags.in == "" || flags.out == "" {
		fs.Usage()
		return fmt.Errorf("normalize command requires both -in and -out")
	}

	absOut, err := pathutil.SanitizeOutputPath(flags.out)
	if err != nil {
		return err
	}
	if absIn, err := filepath.Abs(flags.in); err == nil && absIn == absOut {
		return fmt.Errorf("output path must not overwrite the input file: %s", flags.out)
	}

	raw, err := os.ReadFile(flags.in)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing input document: %w", err)
	}

	opts := []hoist.Option{}
	if flags.workDir != "" {
		opts = append(opts, hoist.WithWorkingDir(flags.workDir))
	} else if dir := filepath.Dir(flags.in); dir != "" {
		opts = append(opts, hoist.WithWorkingDir(dir))
	}
	if flags.verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, hoist.WithLogger(hoist.NewSlogAdapter(slog.New(handler))))
	}

	result, err := hoist.Run(doc, opts...)
	if err != nil {
		return fmt.Errorf("normalizing document: %w", err)
	}

	out, err := marshalDocument(result.Document, flags.out)
	if err != nil {
		return fmt.Errorf("marshaling normalized document: %w", err)
	}

	if err := os.WriteFile(flags.out, out, fileutil.OwnerReadWrite); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	cliutil.Writef(os.Stdout, "hoist normalize\n")
	cliutil.Writef(os.Stdout, "===============\n\n")
	cliutil.Writef(os.Stdout, "Input:  %s\n", flags.in)
	cliutil.Writef(os.Stdout, "Output: %s\n\n", flags.out)
	cliutil.Writef(os.Stdout, "Schemas hoisted:    %d\n", result.Stats.SchemasHoisted)
	cliutil.Writef(os.Stdout, "Aliases merged:     %d\n", result.Stats.AliasesMerged)
	cliutil.Writef(os.Stdout, "Channels rewritten: %d\n", result.Stats.ChannelsRewritten)
	cliutil.Writef(os.Stdout, "Files loaded:       %d\n", result.Stats.FilesLoaded)

	if len(result.Stats.UnresolvedMappings) > 0 {
		cliutil.Writef(os.Stdout, "\nUnresolved discriminator mappings:\n")
		for _, m := range result.Stats.UnresolvedMappings {
			cliutil.Writef(os.Stdout, "  - %s\n", m)
		}
	}
	if len(result.Stats.UnresolvedChannelRefs) > 0 {
		cliutil.Writef(os.Stdout, "\nUnresolved channel references:\n")
		for _, r := range result.Stats.UnresolvedChannelRefs {
			cliutil.Writef(os.Stdout, "  - %s\n", r)
		}
	}

	return nil
}

// marshalDocument marshals doc to JSON or YAML based on outPath's extension.
func marshalDocument(doc any, outPath string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(outPath), ".json") {
		return json.MarshalIndent(doc, "", "  ")
	}
	return yaml.Marshal(doc)
}

func handleMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: hoist mcp\n\n")
		_, _ = fmt.Fprintf(fs.Output(), "Start the MCP server on stdio, exposing the hoist_normalize tool.\n")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	return mcpserver.Run(context.Background())
}

func printUsage() {
	cliutil.Writef(os.Stdout, "hoist - AsyncAPI schema-hoisting and reference-normalization tool\n\n")
	cliutil.Writef(os.Stdout, "Usage: hoist <command> [flags]\n\n")
	cliutil.Writef(os.Stdout, "Commands:\n")
	cliutil.Writef(os.Stdout, "  normalize   Hoist inline schemas, resolve discriminator mappings\n")
	cliutil.Writef(os.Stdout, "              and channel references, and merge duplicates\n")
	cliutil.Writef(os.Stdout, "  mcp         Start the MCP server on stdio\n")
	cliutil.Writef(os.Stdout, "  version     Print the version\n")
	cliutil.Writef(os.Stdout, "  help        Show this help message\n\n")
	cliutil.Writef(os.Stdout, "Run 'hoist <command> -h' for command-specific flags.\n")
}
