package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgnorm/pkg/errors"
	pkgio "github.com/matzehuels/pkgnorm/pkg/io"
	"github.com/matzehuels/pkgnorm/pkg/pipeline"
	"github.com/matzehuels/pkgnorm/pkg/store"
)

// defaultMaxIssues is how many dropped records are listed after a run.
const defaultMaxIssues = 10

// normalizeOpts holds the command-line flags for the normalize command.
type normalizeOpts struct {
	output     string // output file path ("-" for stdout)
	noExtra    bool   // drop declarations mentioning "extra"
	timezone   string // IANA name or fixed offset for timestamps
	strict     bool   // abort on the first malformed record
	includeDev bool   // include npm devDependencies
	noCache    bool   // disable the result cache
	refresh    bool   // recompute even when cached
	storeURI   string // MongoDB URI to upsert packages into
	maxIssues  int    // dropped records to list (0 = all)
}

// normalizeCommand creates the normalize command.
func (c *CLI) normalizeCommand() *cobra.Command {
	opts := normalizeOpts{noExtra: true, maxIssues: defaultMaxIssues}

	cmd := &cobra.Command{
		Use:   "normalize <source> [input]",
		Short: "Normalize a package metadata dump",
		Long: fmt.Sprintf(`Normalize a package metadata dump into the unified document.

Sources: %s

Input and output default to the paths configured for the source.

Examples:
  pkgnorm normalize bigquery data/input/bq_results.json -o deps.json
  pkgnorm normalize pypicache --tz Europe/Amsterdam
  pkgnorm normalize npm registry.json --dev -o - | jq '.pkgs | length'`, strings.Join(pipeline.ValidSources(), ", ")),
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeSources,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			input := ""
			if len(args) > 1 {
				input = args[1]
			}
			return c.runNormalize(cmd.Context(), args[0], input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default from config)")
	cmd.Flags().BoolVar(&opts.noExtra, "no-extra", opts.noExtra, "skip dependencies that mention an extra")
	cmd.Flags().StringVar(&opts.timezone, "tz", "", "timezone for timestamps: IANA name, Local or offset like +02:00 (default UTC)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on the first malformed record instead of dropping it")
	cmd.Flags().BoolVar(&opts.includeDev, "dev", false, "include npm devDependencies")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().StringVar(&opts.storeURI, "store", "", "also upsert packages into MongoDB at this URI")
	cmd.Flags().IntVar(&opts.maxIssues, "max-issues", opts.maxIssues, "dropped records to list (0 lists all)")

	return cmd
}

// applyConfig fills every flag the user did not set from the config file.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *normalizeOpts) {
	cfg := c.Config
	flags := cmd.Flags()
	if !flags.Changed("no-extra") {
		opts.noExtra = cfg.noExtra()
	}
	if !flags.Changed("tz") {
		opts.timezone = cfg.Timezone
	}
	if !flags.Changed("strict") {
		opts.strict = cfg.Strict
	}
	if !flags.Changed("dev") {
		opts.includeDev = cfg.IncludeDev
	}
	if !flags.Changed("store") {
		opts.storeURI = cfg.Store.MongoURI
	}
}

// runNormalize reads input, normalizes it and writes the document.
func (c *CLI) runNormalize(ctx context.Context, source, input string, opts *normalizeOpts) error {
	logger := loggerFromContext(ctx)

	paths := c.Config.Paths[source]
	if input == "" {
		input = paths.Input
	}
	output := opts.output
	if output == "" {
		output = paths.Output
	}
	if input == "" || output == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "no input or output path configured for source %q", source)
	}
	toStdout := output == "-"

	f, err := os.Open(input)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", input)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer f.Close()

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Source:     source,
		NoExtra:    opts.noExtra,
		Timezone:   opts.timezone,
		Strict:     opts.strict,
		IncludeDev: opts.includeDev,
		Refresh:    opts.refresh,
		Logger:     logger,
	}, f)
	if err != nil {
		return err
	}

	if toStdout {
		if err := pkgio.WriteDocument(result.Document, os.Stdout); err != nil {
			return err
		}
	} else if err := pkgio.ExportDocument(result.Document, output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Wrote %d packages", result.Stats.Packages))

	stored := 0
	if opts.storeURI != "" {
		if stored, err = c.saveToStore(ctx, opts.storeURI, result); err != nil {
			return err
		}
	}

	if toStdout {
		logIssues(logger, result.Issues)
		return nil
	}

	printSuccess("Normalized %s packages from %s", StyleNumber.Render(fmt.Sprint(result.Stats.Packages)), source)
	printStats(result.Stats, result.CacheInfo.Hit)
	printFile(output)
	if opts.storeURI != "" {
		printDetail("Stored %d packages in %s.%s", stored, c.Config.Store.Database, c.Config.Store.Collection)
	}
	printIssues(result.Issues, opts.maxIssues)
	return nil
}

// saveToStore upserts the document into MongoDB.
func (c *CLI) saveToStore(ctx context.Context, uri string, result *pipeline.Result) (int, error) {
	s, err := store.NewMongoStore(ctx, store.Config{
		URI:        uri,
		Database:   c.Config.Store.Database,
		Collection: c.Config.Store.Collection,
		Logger:     loggerFromContext(ctx),
	})
	if err != nil {
		return 0, err
	}
	defer s.Close(context.WithoutCancel(ctx))

	return s.Save(ctx, store.Run{ID: result.RunID, Source: result.Source}, result.Document)
}

// printIssues lists dropped records, at most limit of them (0 = all).
func printIssues(issues []*errors.RecordError, limit int) {
	if len(issues) == 0 {
		return
	}
	printWarning("%d records dropped", len(issues))
	for i, issue := range issues {
		if limit > 0 && i >= limit {
			printDetail("... and %d more (--max-issues 0 lists all)", len(issues)-limit)
			return
		}
		printDetail("%s", issue.Error())
	}
}
