package cli

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/pkgnorm/pkg/io"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	top     int    // packages to list, by version count
	rewrite bool   // rewrite legacy files in the canonical shape
	output  string // rewrite destination (defaults to the input path)
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	opts := inspectOpts{top: 10}

	cmd := &cobra.Command{
		Use:   "inspect <document.json>",
		Short: "Summarize a normalized document",
		Long: `Summarize a normalized document: package, version and dependency counts and
the packages with the most versions.

Documents written as a bare array by older tools are accepted; --rewrite
converts them to the {"pkgs": [...]} shape.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().IntVar(&opts.top, "top", opts.top, "number of packages to list (0 hides the table)")
	cmd.Flags().BoolVar(&opts.rewrite, "rewrite", false, "rewrite the document in the canonical shape")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "destination for --rewrite (default: overwrite input)")

	return cmd
}

// runInspect prints the summary and optionally rewrites the file.
func (c *CLI) runInspect(ctx context.Context, path string, opts *inspectOpts) error {
	logger := loggerFromContext(ctx)

	doc, format, err := pkgio.ImportDocument(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded document", "path", path, "format", format)

	sum := doc.Summary()
	printKeyValue("File", path)
	printKeyValue("Format", string(format))
	printKeyValue("Packages", fmt.Sprint(sum.Packages))
	printKeyValue("Versions", fmt.Sprint(sum.Versions))
	printKeyValue("Dependencies", fmt.Sprint(sum.Dependencies))

	if opts.top > 0 && len(doc.Pkgs) > 0 {
		fmt.Println()
		fmt.Println(packageTable(topPackages(doc, opts.top)))
	}

	if !opts.rewrite {
		if format == pkgio.FormatLegacy {
			printNextStep("Convert to the canonical shape", "pkgnorm inspect --rewrite "+path)
		}
		return nil
	}

	dest := opts.output
	if dest == "" {
		dest = path
	}
	if format == pkgio.FormatCanonical && dest == path {
		printInfo("Already canonical, nothing to rewrite")
		return nil
	}
	if err := pkgio.ExportDocument(doc, dest); err != nil {
		return err
	}
	printSuccess("Rewrote document")
	printFile(dest)
	return nil
}

// packageRow is one line of the inspect table.
type packageRow struct {
	name         string
	versions     int
	dependencies int
	latest       string // version with the newest timestamp
}

// topPackages returns the n packages with the most versions, ties broken
// by name.
func topPackages(doc *normalize.Document, n int) []packageRow {
	rows := make([]packageRow, 0, len(doc.Pkgs))
	for _, p := range doc.Pkgs {
		row := packageRow{name: p.Name, versions: len(p.Versions)}
		var latestTS string
		for v, entry := range p.Versions {
			row.dependencies += len(entry.Dependencies)
			if entry.Timestamp > latestTS || (entry.Timestamp == latestTS && v > row.latest) {
				latestTS = entry.Timestamp
				row.latest = v
			}
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b packageRow) int {
		if c := cmp.Compare(b.versions, a.versions); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// packageTable renders rows as a bordered table.
func packageTable(rows []packageRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.name, fmt.Sprint(r.versions), fmt.Sprint(r.dependencies), r.latest}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Versions", "Dependencies", "Latest").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return headerStyle
			}
			if col == 1 || col == 2 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		})
	return t.Render()
}
