package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/card-statement-parser/internal/api"
	"github.com/insightdelivered/card-statement-parser/internal/config"
	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/logging"
	"github.com/insightdelivered/card-statement-parser/internal/metrics"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/writer"
)

const version = "1.0.0"

var (
	cfgFile  string
	logLevel string

	cfg *config.Config
	log logging.Logger = logging.NopLogger{}
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "card-statement-parser",
		Short: "Extract key fields from credit card statement PDFs",
		Long: `Credit Card Statement Parser

Reads credit card statement PDFs from HDFC Bank, ICICI Bank, SBI Card,
Axis Bank and Kotak Mahindra Bank and extracts the card's last digits,
statement date, payment due date, total amount due and minimum amount due.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			cfg = loaded
			adapter := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
			adapter.SetOutput(cmd.ErrOrStderr())
			log = adapter
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or $HOME/.card-statement-parser/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newParseCmd(), newServeCmd(), newBanksCmd(), newVersionCmd())
	return root
}

func newParseCmd() *cobra.Command {
	var (
		bank    string
		format  string
		output  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "parse [flags] <statement.pdf> [statement2.pdf ...]",
		Short: "Parse one or more statement PDFs",
		Example: `  # Auto-detect the bank
  card-statement-parser parse statement.pdf

  # Specify the bank and write CSV
  card-statement-parser parse --bank hdfc --format csv --output out.csv jan.pdf feb.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = cfg.Output.Format
			}
			if workers < 1 {
				workers = cfg.Parse.Workers
			}
			w, err := writer.New(format)
			if err != nil {
				return err
			}
			if bank != "" {
				if _, err := parser.Lookup(bank); err != nil {
					return fmt.Errorf("%w (supported: %s)", err, supportedBanks())
				}
			}

			d := parser.NewDispatcher(extractor.NewPDFExtractor(), log)
			records := parseFiles(cmd.Context(), d, bank, args, workers)

			if output != "" {
				err = writer.WriteFile(w, output, records)
			} else {
				err = w.Write(cmd.OutOrStdout(), records)
			}
			if err != nil {
				return err
			}
			return failures(records)
		},
	}

	cmd.Flags().StringVarP(&bank, "bank", "b", "", "bank code: "+supportedBanks()+" (auto-detected if omitted)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: "+strings.Join(config.OutputFormats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to stdout)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "files parsed concurrently (defaults to parse.workers)")
	return cmd
}

// parseFiles parses every file, at most workers at a time, and returns one
// record per file in argument order. Per-file failures end up in the record.
func parseFiles(ctx context.Context, d *parser.Dispatcher, bank string, files []string, workers int) []writer.Record {
	records := make([]writer.Record, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				records[i] = writer.NewRecord(file, nil, err)
				return nil
			}
			res, err := parseFile(d, bank, file)
			records[i] = writer.NewRecord(file, res, err)
			return nil
		})
	}
	_ = g.Wait()
	return records
}

func parseFile(d *parser.Dispatcher, bank, file string) (*models.ExtractionResult, error) {
	if bank != "" {
		return d.Parse(bank, file)
	}
	code, doc, err := d.Detect(file)
	if err != nil {
		return nil, err
	}
	log.Info("Auto-detected bank", logging.F(logging.FieldFile, file), logging.F(logging.FieldBank, code))
	return d.ParseDocument(string(code), doc)
}

func failures(records []writer.Record) error {
	failed := 0
	for _, r := range records {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(records))
	}
	return nil
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP upload API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Server.Addr
			}

			h := &api.Handler{
				Dispatcher: parser.NewDispatcher(extractor.NewPDFExtractor(), log),
				Metrics:    metrics.NewRecorder(),
				Log:        log,
				UploadDir:  cfg.Server.UploadDir,
				Version:    version,
			}
			app := api.NewApp(h, cfg.Server.MaxUploadMB)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("Listening", logging.F(logging.FieldAddr, addr))
				errCh <- app.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info("Shutting down")
				return app.ShutdownWithTimeout(10 * time.Second)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	return cmd
}

func newBanksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List supported banks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printBanks(cmd.OutOrStdout())
		},
	}
}

func printBanks(out io.Writer) error {
	for _, code := range parser.Banks() {
		s, err := parser.New(string(code))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%-6s %s\n", strings.ToLower(string(code)), s.BankName()); err != nil {
			return err
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "card-statement-parser v%s\n", version)
		},
	}
}

func supportedBanks() string {
	codes := make([]string, 0, len(parser.Banks()))
	for _, code := range parser.Banks() {
		codes = append(codes, strings.ToLower(string(code)))
	}
	return strings.Join(codes, ", ")
}
