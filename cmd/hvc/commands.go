package main

import (
	"birdsong-lab/domain"
	"birdsong-lab/features"
	"birdsong-lab/format"
	"birdsong-lab/internal"
	"birdsong-lab/repositories"
	"birdsong-lab/runtime"
	"birdsong-lab/sink"
	"birdsong-lab/task"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/spf13/cobra"
)

var errUsage = fmt.Errorf("usage error")

type app struct {
	config internal.Config
	log    *slog.Logger
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "hvc",
		Short:         "Birdsong syllable classification pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		a.validateCommand(),
		a.phaseCommand(domain.PhaseExtract, "Extract syllable features from recordings"),
		a.phaseCommand(domain.PhaseSelect, "Train and score candidate models on a feature file"),
		a.phaseCommand(domain.PhasePredict, "Label syllables with a trained model"),
		a.runCommand(),
		a.inspectCommand(),
		a.runsCommand(),
	)
	return root
}

func oneFile(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected one file argument, got %d", errUsage, len(args))
	}
	return nil
}

func (a *app) validateCommand() *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "validate <config.yml>",
		Short: "Check every task of a task file without running it",
		Args:  oneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := task.LoadDocument(args[0])
			if err != nil {
				return err
			}
			phases := doc.Phases()
			if only != "" {
				if !slices.Contains(domain.Phases(), domain.Phase(only)) {
					return fmt.Errorf("%w: unknown phase %q", errUsage, only)
				}
				phases = []domain.Phase{domain.Phase(only)}
			}
			engine := a.engine()
			var failed error
			for _, phase := range phases {
				tasks, err := engine.Validate(doc, phase)
				printValidation(cmd.OutOrStdout(), phase, len(tasks), err)
				if err != nil && failed == nil {
					failed = err
				}
			}
			return failed
		},
	}
	cmd.Flags().StringVar(&only, "phase", "", "validate a single section (extract, select or predict)")
	return cmd
}

func (a *app) phaseCommand(phase domain.Phase, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(phase) + " <config.yml>",
		Short: short,
		Args:  oneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := task.LoadDocument(args[0])
			if err != nil {
				return err
			}
			return a.withEngine(func(engine *runtime.Engine) error {
				report, err := engine.Run(cmd.Context(), doc, phase)
				if report != nil {
					printReport(cmd.OutOrStdout(), report)
				}
				return err
			})
		},
	}
}

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <config.yml>",
		Short: "Run every phase of a task file in pipeline order",
		Args:  oneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := task.LoadDocument(args[0])
			if err != nil {
				return err
			}
			return a.withEngine(func(engine *runtime.Engine) error {
				reports, err := engine.RunAll(cmd.Context(), doc)
				for _, report := range reports {
					printReport(cmd.OutOrStdout(), report)
				}
				return err
			})
		},
	}
}

func (a *app) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Describe a feature file or a model file",
		Args:  oneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch filepath.Ext(args[0]) {
			case sink.FeatureExt:
				ds, err := sink.LoadDataset(args[0])
				if err != nil {
					return err
				}
				printDataset(cmd.OutOrStdout(), args[0], ds)
			case sink.ModelExt:
				return printModel(cmd.OutOrStdout(), args[0])
			default:
				return fmt.Errorf("%w: %s is neither %s nor %s", errUsage, args[0], sink.FeatureExt, sink.ModelExt)
			}
			return nil
		},
	}
}

func (a *app) runsCommand() *cobra.Command {
	var limit int
	var serve bool
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List the runs recorded in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.config.EnableCatalog {
				return fmt.Errorf("%w: the run catalog is disabled (ENABLE_CATALOG=false)", errUsage)
			}
			if _, err := os.Stat(a.config.BadgerFilepath); os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No run recorded yet.")
				return nil
			}
			db, err := a.openCatalog(true)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			runs, err := repositories.NewRunRepository(db, a.log).List(limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			if serve {
				return a.serveCatalog(cmd.Context(), db)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs, 0 for all")
	cmd.Flags().BoolVar(&serve, "serve", false, "keep serving the catalog inspector until interrupted")
	return cmd
}

func (a *app) engine() *runtime.Engine {
	resolver := format.NewResolver(a.log)
	computer := features.NewComputer()
	pool := a.config.Pool()
	return runtime.NewEngine(
		a.log,
		runtime.NewExtractor(a.log, resolver, computer, pool),
		runtime.NewSelector(a.log, sink.LoadDataset, sink.NewModelSink(a.log)),
		runtime.NewPredictor(a.log, resolver, computer, pool),
		sink.NewDatasetSink(a.log),
		sink.NewPredictionSink(a.log),
	)
}

// withEngine runs fn with an engine recording into the catalog when it is enabled.
func (a *app) withEngine(fn func(engine *runtime.Engine) error) error {
	engine := a.engine()
	if !a.config.EnableCatalog {
		return fn(engine)
	}
	db, err := a.openCatalog(false)
	if err != nil {
		return fmt.Errorf("catalog opening failed: %w", err)
	}
	defer func() {
		a.log.Debug("Closing catalog")
		_ = db.Close()
	}()
	return fn(engine.WithCatalog(repositories.NewRunRepository(db, a.log)))
}

func (a *app) openCatalog(readOnly bool) (*badger.DB, error) {
	options := badger.DefaultOptions(a.config.BadgerFilepath).WithLoggingLevel(badger.WARNING)
	if a.log.Enabled(context.Background(), slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	}
	if readOnly {
		// Another hvc process may hold the lock while it runs
		options = options.WithReadOnly(true).WithBypassLockGuard(true)
	}
	return badger.Open(options)
}

func (a *app) serveCatalog(ctx context.Context, db *badger.DB) error {
	endpoint := "/inspect"
	a.log.Info("Catalog inspector available", "url", fmt.Sprintf("http://localhost:%d%s", a.config.InspectPort, endpoint))
	database.StartDebugServer(db, a.config.InspectPort, endpoint, runMapper)
	<-ctx.Done()
	return nil
}

func runMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	run, err := repositories.DecodeRunRecord(val)
	if err != nil {
		row.Detail = "Error: decode failed"
		return row
	}
	row.Type = string(run.Phase)
	row.Detail = fmt.Sprintf("%s: %d tasks, %d failed", run.ConfigFile, len(run.Items), run.Failed())
	return row
}
