// Command dirschema is a thin CLI entry point exercising evaluate.Validate
// end to end. It exists so the library has a runnable entry point in the
// teacher's convention of shipping a cmd/<tool>/main.go per library — the
// full command-line surface (flag exhaustiveness, an exit-code table, log
// level flags) stays out of scope; this binary only wires together a
// config load, an adapter Select, a rule Parse, and a Validate call.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fulmenhq/dirschema/adapter"
	"github.com/fulmenhq/dirschema/dsconfig"
	"github.com/fulmenhq/dirschema/dslog"
	"github.com/fulmenhq/dirschema/dstelemetry"
	"github.com/fulmenhq/dirschema/evaluate"
	"github.com/fulmenhq/dirschema/ruleset"
)

const appName = "dirschema"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		if err := runValidate(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dirschema validate --rule <file> <root>")
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	rulePath := fs.String("rule", "", "Rule document (YAML or JSON)")
	format := fs.String("format", "text", "Output format (text|json)")
	configPath := fs.String("config", "", "Explicit config file path (defaults to the XDG search path)")
	relativePrefix := fs.String("relative-prefix", "", "Prefix applied to bare validator-reference strings")
	localBaseDir := fs.String("local-base-dir", "", "Base directory for local:// validator references")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *rulePath == "" {
		return errors.New("--rule is required")
	}
	if fs.NArg() != 1 {
		return errors.New("provide exactly one root path (a directory, .zip, or .h5 file)")
	}
	root := fs.Arg(0)

	cfg, err := dsconfig.Load(appName, *configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *relativePrefix != "" {
		cfg.RelativePrefix = *relativePrefix
	}
	if *localBaseDir != "" {
		cfg.LocalBaseDir = *localBaseDir
	}
	if cfg.LocalBaseDir == "" {
		if absRule, err := filepath.Abs(*rulePath); err == nil {
			cfg.LocalBaseDir = filepath.Dir(absRule)
		}
	}

	logger, err := dslog.New(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ruleData, err := os.ReadFile(*rulePath) // #nosec G304 -- operator-supplied rule file path
	if err != nil {
		return fmt.Errorf("read rule: %w", err)
	}
	rule, err := ruleset.Parse(ruleData)
	if err != nil {
		return fmt.Errorf("parse rule: %w", err)
	}

	adp, err := adapter.Select(root)
	if err != nil {
		return fmt.Errorf("open root: %w", err)
	}
	defer adp.Close() //nolint:errcheck

	ev := evaluate.NewEvaluator(adp, cfg.Convention(), evaluate.Resolver{
		LocalBaseDir:   cfg.LocalBaseDir,
		RelativePrefix: cfg.RelativePrefix,
	})
	ev.Metrics = dstelemetry.New()
	ev.Log = logger

	result, err := ev.Validate(context.Background(), rule)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	return report(*format, result)
}

func report(format string, result evaluate.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	default:
		if len(result) == 0 {
			fmt.Println("valid")
		} else {
			fmt.Println("invalid")
			for path, entries := range result {
				for loc, entry := range entries {
					fmt.Printf("  %s %s: %v\n", path, loc, entry.Err)
				}
			}
		}
	}
	if len(result) != 0 {
		os.Exit(1)
	}
	return nil
}
