package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/cmds"
	"github.com/reusee/taibf/configs"
	"github.com/reusee/taibf/debugs"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/modes"
	"github.com/reusee/taibf/storages"
	"github.com/reusee/taibf/taibf"
	"github.com/reusee/taibf/traces"
	"github.com/reusee/taibf/vars"
)

var (
	tapeLength = cmds.Var[int]("-tape-length", "number of tape cells, default 100")
	eofPolicy  = cmds.Var[string]("-eof", "behavior when input is exhausted: zero, keep or fail")
	maxSteps   = cmds.Var[int]("-max-steps", "abort after this many executed instructions")
	configFile = cmds.Var[string]("-config", "CUE or TOML config file")
	traceFile  = cmds.Var[string]("-trace", "write the state history to a .json or .cbor file")
	dbFile     = cmds.Var[string]("-db", "append the run to a SQLite database")
	checkFiles = cmds.Collect[string]("-check", "run a Starlark script against the history")
	tap        = cmds.Switch("-tap", "open a Starlark REPL over the history after the run")
	prompt     = cmds.Switch("-prompt", "print INPUT: to stderr before each input read")
	dump       = cmds.Switch("-dump", "print the final state to stderr")
)

func main() {
	var sourcePath string
	cmds.Positional(func(arg string) error {
		if sourcePath != "" {
			return fmt.Errorf("unexpected argument: %s", arg)
		}
		sourcePath = arg
		return nil
	})
	cmds.Execute(os.Args[1:])

	if sourcePath == "" {
		fmt.Fprintln(os.Stderr, "usage: taibf <source-file> [options]")
		cmds.GlobalExecutor.PrintUsage()
		os.Exit(2)
	}

	if err := run(sourcePath); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

func run(sourcePath string) error {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	loader, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	scope := newScope(loader)
	config, err := resolveConfig(scope)
	if err != nil {
		return err
	}
	scope = scope.Fork(
		func() taibf.Config {
			return config
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scope.Call(func(
		newSpan logs.NewSpan,
		newMachine taibf.NewMachine,
		save traces.Save,
		openDB storages.OpenDB,
		check debugs.Check,
		tapGlobals debugs.Tap,
	) {
		ctx, _ = newSpan(ctx, "")

		stdout := bufio.NewWriter(os.Stdout)
		output := &teeOutput{
			w: stdout,
		}
		input := &terminalInput{
			r:   bufio.NewReader(os.Stdin),
			out: stdout,
		}
		if *prompt {
			input.prompt = os.Stderr
		}

		instructions := taibf.Decode(string(content))
		history, runErr := newMachine(output, input).Run(ctx, instructions)
		if err := stdout.Flush(); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("flush output: %w", err))
		}
		rec := traces.NewRecord(sourcePath, instructions, config, history, output.copy.Bytes(), runErr)

		if *dump && len(history) > 0 {
			dumpState(os.Stderr, history.Last())
		}

		errs := []error{runErr}

		if *traceFile != "" {
			errs = append(errs, save(ctx, *traceFile, rec))
		}

		if *dbFile != "" {
			errs = append(errs, saveToDB(ctx, openDB, *dbFile, rec))
		}

		globals := debugs.Globals(rec)
		for _, path := range *checkFiles {
			src, err := os.ReadFile(path)
			if err != nil {
				errs = append(errs, fmt.Errorf("read check script: %w", err))
				continue
			}
			errs = append(errs, check(ctx, path, src, globals))
		}

		if *tap {
			tapGlobals(ctx, sourcePath, globals)
		}

		err = logs.WrapSpan(ctx, errors.Join(errs...))
	})

	return err
}

func loadConfig(path string) (configs.Loader, error) {
	var paths []string
	if path != "" {
		paths = append(paths, path)
	}
	loader := configs.NewLoader(paths, taibf.ConfigSchema)
	if err := loader.Load(); err != nil {
		return loader, fmt.Errorf("load config: %w", err)
	}
	return loader, nil
}

func newScope(loader configs.Loader) dscope.Scope {
	return dscope.New(
		new(logs.Module),
		new(taibf.Module),
		new(traces.Module),
		new(storages.Module),
		new(debugs.Module),
		modes.ForProduction(),
	).Fork(
		func() configs.Loader {
			return loader
		},
	)
}

// resolveConfig merges option values over the config files. Options win.
func resolveConfig(scope dscope.Scope) (taibf.Config, error) {
	config := dscope.Get[taibf.Config](scope)
	config.TapeLength = vars.FirstNonZero(*tapeLength, config.TapeLength)
	config.EOF = vars.FirstNonZero(taibf.EOFPolicy(*eofPolicy), config.EOF)
	config.MaxSteps = vars.FirstNonZero(*maxSteps, config.MaxSteps)
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("bad config: %w", err)
	}
	return config, nil
}

func saveToDB(ctx context.Context, openDB storages.OpenDB, path string, rec *traces.Record) error {
	db, err := openDB(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveRecord(ctx, rec)
}
