// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"golang.org/x/term"

	"redact-check/internal/analyzer"
	"redact-check/internal/audit"
	"redact-check/internal/cleaner"
	"redact-check/internal/config"
	"redact-check/internal/formatters"
	"redact-check/internal/observability"
	"redact-check/internal/pdfaccess"
	"redact-check/internal/version"
	"redact-check/internal/web"
)

// Exit codes: 0 clean, 1 pages flagged, 2 error.
const (
	exitOK      = 0
	exitFlagged = 1
	exitError   = 2
)

type cliFlags struct {
	file        string
	format      string
	clean       bool
	output      string
	auditOut    string
	verbose     bool
	debug       bool
	noColor     bool
	configFile  string
	webMode     bool
	webPort     string
	showVersion bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Println(version.String())
		return exitOK
	}

	cfg := loadConfiguration(flags.configFile)
	applyConfigDefaults(&flags, cfg)

	if flags.noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	level := observability.ObservabilityMetrics
	if flags.debug {
		level = observability.ObservabilityDebug
	}
	observer := observability.NewStandardObserver(level, os.Stderr)

	if flags.webMode {
		server := web.NewWebServer(flags.webPort, observer)
		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	}

	if flags.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required (or run with -web)")
		flag.Usage()
		return exitError
	}

	data, err := os.ReadFile(flags.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", flags.file, err)
		return exitError
	}

	a := analyzer.New(observer)
	log, err := a.Analyze(data, filepath.Base(flags.file))
	if err != nil {
		return reportPipelineError(err)
	}

	var actions *audit.ActionsSummary
	if flags.clean {
		c := cleaner.New(observer)
		result, err := c.Clean(data, log)
		if err != nil {
			return reportPipelineError(err)
		}
		outPath := flags.output
		if outPath == "" {
			outPath = cleanedPath(cfg.Clean.OutputDir, flags.file)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			return exitError
		}
		if err := os.WriteFile(outPath, result.CleanedBytes, 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing cleaned PDF: %v\n", err)
			return exitError
		}
		actions = &result.Actions
		fmt.Fprintf(os.Stderr, "Cleaned PDF written to %s\n", outPath)
	}

	out, err := formatters.Export(flags.format, log, actions, formatters.Options{
		Verbose: flags.verbose,
		NoColor: color.NoColor,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	fmt.Print(out)

	if flags.auditOut != "" {
		auditJSON, err := json.MarshalIndent(log, "", "  ")
		if err == nil {
			err = os.WriteFile(flags.auditOut, append(auditJSON, '\n'), 0o600)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing audit log: %v\n", err)
			return exitError
		}
	}

	if log.Summary.PagesFlagged > 0 {
		return exitFlagged
	}
	return exitOK
}

func parseFlags() cliFlags {
	var flags cliFlags
	flag.StringVar(&flags.file, "file", "", "PDF file to analyze")
	flag.StringVar(&flags.format, "format", "", "Output format: text or json")
	flag.BoolVar(&flags.clean, "clean", false, "Write a cleaned PDF with overlay artifacts removed")
	flag.StringVar(&flags.output, "output", "", "Path for the cleaned PDF (default: <output_dir>/<name>.cleaned.pdf)")
	flag.StringVar(&flags.auditOut, "audit", "", "Also write the audit log JSON to this path")
	flag.BoolVar(&flags.verbose, "verbose", false, "Show per-page signal detail")
	flag.BoolVar(&flags.debug, "debug", false, "Emit component metrics to stderr")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.StringVar(&flags.configFile, "config", "", "Path to configuration file")
	flag.BoolVar(&flags.webMode, "web", false, "Run the web server instead of a one-shot scan")
	flag.StringVar(&flags.webPort, "port", "", "Web server port")
	flag.BoolVar(&flags.showVersion, "version", false, "Print version and exit")
	flag.Parse()
	return flags
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// applyConfigDefaults fills unset flags from the configuration.
func applyConfigDefaults(flags *cliFlags, cfg *config.Config) {
	if flags.format == "" {
		flags.format = cfg.Defaults.Format
	}
	if !flags.verbose {
		flags.verbose = cfg.Defaults.Verbose
	}
	if !flags.debug {
		flags.debug = cfg.Defaults.Debug
	}
	if !flags.noColor {
		flags.noColor = cfg.Defaults.NoColor
	}
	if flags.webPort == "" {
		flags.webPort = cfg.Web.Port
	}
}

func cleanedPath(outputDir, inputPath string) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(outputDir, name+".cleaned.pdf")
}

func reportPipelineError(err error) int {
	switch {
	case errors.Is(err, pdfaccess.ErrEmptyInput):
		fmt.Fprintln(os.Stderr, "Error: input file is empty")
	case errors.Is(err, pdfaccess.ErrMalformedPDF):
		fmt.Fprintln(os.Stderr, "Error: not a PDF (missing %PDF- header)")
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitError
}
