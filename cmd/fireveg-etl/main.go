// Command fireveg-etl imports ecological field-survey and literature-trait
// workbooks into the fire ecology database. Every import subcommand runs in
// dry-run mode by default, printing the SQL it would execute; pass --apply
// to commit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/fireveg/fireveg-etl/internal/adapter/bibliography"
	"github.com/fireveg/fireveg-etl/internal/adapter/postgres"
	"github.com/fireveg/fireveg-etl/internal/adapter/workbook"
	"github.com/fireveg/fireveg-etl/internal/config"
	"github.com/fireveg/fireveg-etl/internal/domain"
	"github.com/fireveg/fireveg-etl/internal/observability"
	"github.com/fireveg/fireveg-etl/internal/pipeline"
	"github.com/fireveg/fireveg-etl/internal/refs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runEnv bundles everything an import subcommand needs once flags are
// parsed: config, logger, metrics, the open workbook and the store.
type runEnv struct {
	cfg      *config.Config
	logger   *slog.Logger
	mapping  *config.Mapping
	metrics  *observability.Metrics
	wb       *workbook.Workbook
	sheet    *workbook.Sheet
	store    *postgres.Store
	importer *pipeline.Importer
	pool     *pgxpool.Pool
}

func (e *runEnv) close() {
	if e.wb != nil {
		e.wb.Close() //nolint:errcheck // read-only workbook
	}
	if e.pool != nil {
		e.pool.Close()
	}
}

type rootFlags struct {
	workbookPath string
	sheetName    string
	mappingPath  string
	apply        bool
	table        string
	keyCols      []string
	constraint   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "fireveg-etl",
		Short:         "Import fire ecology survey and trait workbooks into PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.workbookPath, "workbook", "", "path to the source workbook (.xlsx)")
	pf.StringVar(&flags.sheetName, "sheet", "", "worksheet to import")
	pf.StringVar(&flags.mappingPath, "mapping", "", "path to the YAML column mapping")
	pf.BoolVar(&flags.apply, "apply", false, "execute statements instead of printing them")
	pf.StringVar(&flags.table, "table", "", "override the destination table")
	pf.StringSliceVar(&flags.keyCols, "key-columns", nil, "override the key columns")
	pf.StringVar(&flags.constraint, "constraint", "", "override the uniqueness constraint")

	root.AddCommand(
		newSitesCmd(flags),
		newVisitsCmd(flags),
		newSamplesCmd(flags),
		newQuadratsCmd(flags),
		newFireHistoryCmd(flags),
		newIntensityCmd(flags),
		newTraitsCmd(flags),
		newResproutingCmd(flags),
		newReferencesCmd(flags),
		newReportCmd(),
	)
	return root
}

// setup prepares the run environment shared by all import subcommands. A
// database pool is opened only when statements will actually execute, or
// when the run needs to read persisted visits.
func setup(ctx context.Context, flags *rootFlags, needsDB bool) (*runEnv, error) {
	if flags.workbookPath == "" || flags.sheetName == "" || flags.mappingPath == "" {
		return nil, fmt.Errorf("--workbook, --sheet and --mapping are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	mapping, err := config.LoadMapping(flags.mappingPath)
	if err != nil {
		return nil, err
	}

	wb, err := workbook.Open(flags.workbookPath)
	if err != nil {
		return nil, err
	}
	env := &runEnv{cfg: cfg, logger: logger, mapping: mapping, metrics: metrics, wb: wb}

	env.sheet, err = wb.Sheet(flags.sheetName)
	if err != nil {
		env.close()
		return nil, err
	}

	if flags.apply || needsDB {
		env.pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			env.close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
	}
	var db postgres.DB
	if env.pool != nil {
		db = env.pool
	}
	env.store = postgres.NewStore(db, logger, flags.apply, cfg.BatchSize)
	env.importer = pipeline.New(env.store, logger, metrics)
	return env, nil
}

// target resolves the destination table, honouring CLI overrides.
func (f *rootFlags) target(table string, keyCols []string, constraint string) pipeline.Target {
	t := pipeline.Target{Table: table, KeyCols: keyCols, Constraint: constraint}
	if f.table != "" {
		t.Table = f.table
	}
	if len(f.keyCols) > 0 {
		t.KeyCols = f.keyCols
	}
	if f.constraint != "" {
		t.Constraint = f.constraint
	}
	return t
}

// printReport writes the run summary and the final metric values.
func printReport(cmd *cobra.Command, env *runEnv, report *pipeline.Report) {
	cmd.Printf("rows processed: %d\n", report.RowsProcessed)
	cmd.Printf("records emitted: %d\n", report.RecordsEmitted)
	cmd.Printf("rows skipped: %d\n", report.RowsSkipped)
	cmd.Printf("rows upserted: %d\n", report.RowsUpserted)
	if report.Unknown > 0 || report.Unresolved > 0 {
		cmd.Printf("unknown visits: %d\n", report.Unknown)
		cmd.Printf("unresolved dates: %d\n", report.Unresolved)
	}
	env.metrics.Log(env.logger)
}

func newSitesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "Import a field-site worksheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer env.close()
			if env.mapping.Sites == nil {
				return fmt.Errorf("mapping has no sites section")
			}
			report, err := env.importer.ImportSites(cmd.Context(), env.sheet, *env.mapping.Sites,
				flags.target("form.field_site", []string{"site_label"}, "field_site_pkey"))
			if err != nil {
				return err
			}
			printReport(cmd, env, report)
			return nil
		},
	}
}

func newVisitsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "visits",
		Short: "Import a field-visit worksheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer env.close()
			if env.mapping.Visits == nil {
				return fmt.Errorf("mapping has no visits section")
			}
			report, err := env.importer.ImportVisits(cmd.Context(), env.sheet, *env.mapping.Visits,
				flags.target("form.field_visit", []string{"visit_id", "visit_date"}, "field_visit_pkey"))
			if err != nil {
				return err
			}
			printReport(cmd, env, report)
			return nil
		},
	}
}

func newSamplesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "Import a field-sample worksheet, reconciling against known visits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer env.close()
			if env.mapping.Samples == nil {
				return fmt.Errorf("mapping has no samples section")
			}
			report, err := env.importer.ImportSamples(cmd.Context(), env.sheet, *env.mapping.Samples, env.store, env.store)
			if err != nil {
				return err
			}
			printReport(cmd, env, report)
			return nil
		},
	}
}

func newQuadratsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "quadrats",
		Short: "Import a quadrat-sample worksheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer env.close()
			if env.mapping.Quadrats == nil {
				return fmt.Errorf("mapping has no quadrats section")
			}
			report, err := env.importer.ImportQuadrats(cmd.Context(), env.sheet, *env.mapping.Quadrats, env.store,
				flags.target("form.quadrat_samples", []string{"visit_id", "sample_nr", "species"}, "quadrat_samples_pkey"))
			if err != nil {
				return err
			}
			printReport(cmd, env, report)
			return nil
		},
	}
}

func newFireHistoryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fire-history",
		Short: "Import a fire-history worksheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer env.close()
			if len(env.mapping.FireHistory) == 0 {
				return fmt.Errorf("mapping has no fire_history section")
			}
			report, err := env.importer.ImportFireHistory(cmd.Context(), env.sheet, env.mapping.FireHistory,
				flags.target("form.fire_history", []string{"site_label", "fire_date"}, "fire_history_pkey"))
			if err != nil {
				return err
			}
			printReport(cmd, env, report)
			return nil
		},
	}
}

func newIntensityCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "intensity",
		Short: "Import a fire intensity / structure worksheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer env.close()
			if env.mapping.Intensity == nil {
				return fmt.Errorf("mapping has no intensity section")
			}
			report, err := env.importer.ImportFireIntensity(cmd.Context(), env.sheet, *env.mapping.Intensity,
				flags.target("form.fire_intensity", []string{"visit_id", "measured_var"}, "fire_intensity_pkey"))
			if err != nil {
				return err
			}
			printReport(cmd, env, report)
			return nil
		},
	}
}

// resolver builds the reference resolver from the mapping's references
// section, or nil when the workbook carries no reference tables.
func resolver(env *runEnv) (*refs.Resolver, *refs.Tables, string, error) {
	rc := env.mapping.References
	if rc == nil {
		return nil, nil, "", nil
	}
	sheetName := rc.Sheet
	if sheetName == "" {
		sheetName = refs.ReferencesSheet
	}
	refSheet, err := env.wb.Sheet(sheetName)
	if err != nil {
		return nil, nil, "", err
	}
	tables, err := refs.LoadTables(refSheet, rc.Code, rc.Citation)
	if err != nil {
		return nil, nil, "", err
	}
	return refs.NewResolverFromTables(refSheet, tables), tables, rc.MainSource, nil
}

func newTraitsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "traits",
		Short: "Import literature trait columns, one table per trait",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer env.close()
			if len(env.mapping.Traits) == 0 {
				return fmt.Errorf("mapping has no traits section")
			}
			res, _, mainSource, err := resolver(env)
			if err != nil {
				return err
			}
			var hr pipeline.HyperlinkResolver
			if res != nil {
				hr = res
			}
			report, err := env.importer.ImportTraits(cmd.Context(), env.sheet, env.mapping.Traits, hr, mainSource,
				env.mapping.RedundantSources)
			if err != nil {
				return err
			}
			printReport(cmd, env, report)
			return nil
		},
	}
}

func newResproutingCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resprouting",
		Short: "Import the resprouting summary worksheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer env.close()
			if env.mapping.Resprouting == nil {
				return fmt.Errorf("mapping has no resprouting section")
			}
			_, tables, mainSource, err := resolver(env)
			if err != nil {
				return err
			}
			var nfrrRefs map[string]string
			var otherRefs map[int]string
			if tables != nil {
				nfrrRefs, otherRefs = tables.Tags, tables.Footnotes
			}
			report, err := env.importer.ImportResprouting(cmd.Context(), env.sheet, *env.mapping.Resprouting,
				env.mapping.NFRRCategories, nfrrRefs, otherRefs, mainSource,
				flags.target("litrev.resprouting_class", nil, ""))
			if err != nil {
				return err
			}
			printReport(cmd, env, report)
			return nil
		},
	}
}

func newReferencesCmd(flags *rootFlags) *cobra.Command {
	var bibPath string
	cmd := &cobra.Command{
		Use:   "references",
		Short: "Load the reference list from the workbook and an optional bibliography file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer env.close()
			if env.mapping.References == nil {
				return fmt.Errorf("mapping has no references section")
			}
			_, tables, _, err := resolver(env)
			if err != nil {
				return err
			}

			var rows []domain.Row
			seen := make(map[string]struct{})
			add := func(code, cite string) {
				if code == "" {
					return
				}
				if _, dup := seen[code]; dup {
					return
				}
				seen[code] = struct{}{}
				rows = append(rows, domain.Row{
					{Column: "ref_code", Value: code},
					{Column: "ref_cite", Value: cite},
				})
			}

			// Worksheet order, by row number.
			nrs := make([]int, 0, len(tables.RowTags))
			for k := range tables.RowTags {
				if n, err := strconv.Atoi(k); err == nil {
					nrs = append(nrs, n)
				}
			}
			sort.Ints(nrs)
			for _, n := range nrs {
				cite := tables.RowTags[strconv.Itoa(n)]
				add(refs.CreateRefCode(cite), cite)
			}

			if bibPath != "" {
				entries, err := bibliography.LoadEntries(bibPath)
				if err != nil {
					return err
				}
				for _, e := range entries {
					add(bibliography.Label(e), bibliography.Citation(e))
				}
			}

			target := flags.target("litrev.ref_list", []string{"ref_code"}, "ref_list_pkey")
			updated, err := env.store.Upsert(cmd.Context(), target.Table, rows, target.KeyCols, target.Constraint)
			if err != nil {
				return err
			}
			cmd.Printf("references found: %d\n", len(rows))
			cmd.Printf("rows upserted: %d\n", updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&bibPath, "bibliography", "", "path to a YAML bibliography to append")
	return cmd
}

func newReportCmd() *cobra.Command {
	var traitType string
	cmd := &cobra.Command{
		Use:   "report <trait>",
		Short: "Print a weighted display summary of a persisted trait table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := observability.NewLogger(cfg)
			pool, err := pgxpool.New(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()
			store := postgres.NewStore(pool, logger, true, cfg.BatchSize)

			trait := args[0]
			switch traitType {
			case "categorical":
				values, weights, err := store.CategoricalTraitSummary(cmd.Context(), trait)
				if err != nil {
					return err
				}
				cmd.Printf("%s: %s\n", trait, domain.SummariseValues(values, weights))
			case "numeric":
				best, lower, upper, err := store.NumericTraitSummary(cmd.Context(), trait)
				if err != nil {
					return err
				}
				cmd.Printf("%s: %s\n", trait, domain.SummariseTriplet(best, lower, upper))
			default:
				return fmt.Errorf("unknown trait type %q", traitType)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&traitType, "type", "categorical", "trait type: categorical or numeric")
	return cmd
}
