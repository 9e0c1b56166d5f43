// Package cli implements the rdbdump command-line surface: the parse
// subcommand that decodes a snapshot file to JSON, and the export
// subcommand that does the same against a live instance.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dinofly/rdbdump/internal/config"
	"github.com/dinofly/rdbdump/internal/decompress"
	"github.com/dinofly/rdbdump/internal/jsonout"
	"github.com/dinofly/rdbdump/internal/liveexport"
	"github.com/dinofly/rdbdump/internal/logger"
	"github.com/dinofly/rdbdump/internal/rdb"
)

// Execute dispatches CLI subcommands and returns the process exit
// code.
func Execute(args []string) int {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[rdbdump] ")

	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "parse":
		return runParse(args[1:])
	case "export":
		return runExport(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version", "--version", "-v":
		fmt.Println("rdbdump 0.1.0-dev")
		return 0
	default:
		log.Printf("unknown subcommand: %s", args[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`rdbdump - snapshot format decoder

Usage:
  rdbdump parse <input-file> [<output-file>] [--pretty] [--simple]
  rdbdump export <config-file>
  rdbdump help
  rdbdump version

parse decodes a snapshot file to JSON. With no output file, JSON is
written to stdout. --simple emits key->value only; the default emits
{rdb_version, aux, db, keys: key->{value,type,...metadata}}.

export connects to a live instance (per the YAML config file) and
writes a key->value JSON object like parse --simple does, except that
sorted sets are member->score objects and streams are entry lists.`)
}

// initLogger points the shared logger at ./logs/<mode>.log so decode
// diagnostics survive past the terminal scrollback, mirroring the
// console mirroring convention WARN/ERROR use.
func initLogger(mode string) {
	if err := logger.Init("logs", logger.INFO, mode); err != nil {
		log.Printf("logging to file disabled: %v", err)
		return
	}
	log.SetOutput(logger.Writer())
}

func runParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	var pretty bool
	var simple bool
	fs.BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	fs.BoolVar(&simple, "simple", false, "Emit key->value only, omitting type and TTL metadata")

	// Flags may come before, between or after the file arguments.
	var rest []string
	for {
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 1
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		rest = append(rest, args[0])
		args = args[1:]
	}
	if len(rest) < 1 {
		log.Println("parse requires an input file")
		fs.Usage()
		return 2
	}
	inputPath := rest[0]

	initLogger("parse")

	in, err := os.Open(inputPath)
	if err != nil {
		logger.Error("failed to open input file: %v", err)
		return 1
	}
	defer in.Close()

	wrapped, err := decompress.WrapInput(in)
	if err != nil {
		logger.Error("failed to read input file: %v", err)
		return 1
	}

	diagCount := 0
	onDiag := func(msg string) {
		diagCount++
		logger.Warn("decode: %s", msg)
	}

	stream, err := rdb.NewRecordStream(wrapped, decompress.LZF{}, onDiag)
	if err != nil {
		logger.Error("failed to read snapshot header: %v", err)
		return 1
	}

	mode := rdb.ModeFull
	if simple {
		mode = rdb.ModeSimple
	}
	snap, err := rdb.NewSnapshotAssembler(mode).Assemble(stream)
	if err != nil {
		logger.Error("failed to decode snapshot: %v", err)
		return 1
	}

	var out []byte
	if simple {
		out, err = jsonout.RenderSimple(snap, pretty)
	} else {
		out, err = jsonout.RenderFull(snap, pretty)
	}
	if err != nil {
		logger.Error("failed to render JSON: %v", err)
		return 1
	}

	if len(rest) >= 2 {
		if err := os.WriteFile(rest[1], out, 0644); err != nil {
			logger.Error("failed to write output file: %v", err)
			return 1
		}
	} else {
		os.Stdout.Write(out)
		os.Stdout.Write([]byte("\n"))
	}

	if diagCount > 0 {
		logger.Info("decoded with %d recoverable diagnostic(s)", diagCount)
	}
	return 0
}

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	var show bool
	fs.BoolVar(&show, "show", false, "Print the loaded configuration and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	rest := fs.Args()
	if len(rest) < 1 {
		log.Println("export requires a config file")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(rest[0])
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 2
	}
	if show {
		fmt.Println(cfg.Summary())
		return 0
	}

	initLogger("export")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter, err := liveexport.New(liveexport.Config{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		TLS:       cfg.TLS,
		ScanCount: cfg.ScanCount,
		ScanRate:  cfg.ScanRate,
	})
	if err != nil {
		logger.Error("failed to connect: %v", err)
		return 1
	}
	defer exporter.Close()

	data, err := exporter.Export(ctx)
	if err != nil {
		logger.Error("export failed: %v", err)
		return 1
	}

	var out []byte
	if cfg.Pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		logger.Error("failed to render JSON: %v", err)
		return 1
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
	return 0
}
