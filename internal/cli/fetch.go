package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apierrors "github.com/blockversemc/modfeed/pkg/errors"
	"github.com/blockversemc/modfeed/pkg/feed"
	"github.com/blockversemc/modfeed/pkg/observability"
)

// Output formats accepted by fetch.
const (
	formatJSON  = "json"
	formatTable = "table"
)

// fetchOptions holds the flags for fetch.
type fetchOptions struct {
	format  string
	list    string
	output  string
	loader  string
	refresh bool
	noCache bool
	compact bool
}

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Build the feed once and print it",
		Long: `Build the feed once and print it.

The mod list is read from the configured URL, or from --list which may be a
URL or a local file. Output is the same JSON array the server returns, or a
table with --format table.`,
		Example: `  modfeed fetch
  modfeed fetch --format table --loader fabric
  modfeed fetch --list ./modrinth-slugs.json -o feed.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "output format: json or table")
	cmd.Flags().StringVar(&opts.list, "list", "", "mod list URL or file (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().StringVar(&opts.loader, "loader", "", "only include records for this loader")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached feed and API responses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache entirely")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "print JSON without indentation")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{formatJSON, formatTable}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, opts fetchOptions) error {
	if opts.format != formatJSON && opts.format != formatTable {
		return apierrors.New(apierrors.ErrCodeInvalidFormat, "unknown format %q (want json or table)", opts.format)
	}
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	builder, closeCache, err := c.newBuilder(ctx, builderOptions{list: opts.list, noCache: opts.noCache})
	if err != nil {
		return err
	}
	defer closeCache()

	spinner := newSpinnerWithContext(ctx, "Loading mod list...")
	prevHooks := observability.SetFeedHooks(&spinnerHooks{spinner: spinner})
	defer observability.SetFeedHooks(prevHooks)

	prog := newProgress(logger)
	spinner.Start()
	res, err := builder.Build(ctx, opts.refresh)
	if err != nil {
		spinner.StopWithError("Feed build failed")
		return err
	}
	spinner.Stop()
	prog.done("Built feed", "records", len(res.Records), "mods", res.Mods, "cached", res.FromCache)

	printStats(res.Mods, len(res.Records), len(res.Failed), res.FromCache)
	for _, slug := range res.Failed {
		printWarning("No records for %s", slug)
	}

	records := feed.FilterLoader(res.Records, opts.loader)

	w := c.out
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch opts.format {
	case formatTable:
		fmt.Fprintln(w, renderRecordTable(records, -1))
	default:
		if err := writeRecordsJSON(w, records, !opts.compact); err != nil {
			return err
		}
	}

	if opts.output != "" {
		printSuccess("Wrote %d records to %s", len(records), opts.output)
	} else if opts.format == formatTable {
		printNextStep("Browse interactively", appName+" browse")
	}
	return nil
}

func writeRecordsJSON(w io.Writer, records []feed.Record, indent bool) error {
	if records == nil {
		records = []feed.Record{}
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(records)
}

// renderRecordTable renders records as a bordered table. The row at
// cursor (if any) is highlighted.
func renderRecordTable(records []feed.Record, cursor int) string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.PostID.String(), r.Type, r.Loader, r.Version, shortLink(r.Link)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Post", "Type", "Loader", "Game versions", "File").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == cursor {
				base = base.Bold(true)
			}
			switch col {
			case 2:
				if row < len(records) {
					return base.Inherit(loaderStyle(records[row].Loader))
				}
			case 4:
				return base.Foreground(colorBlue)
			case 0, 1:
				return base.Foreground(colorGray)
			}
			return base
		})

	return t.Render()
}

// shortLink trims a download URL to its file name.
func shortLink(link string) string {
	if i := strings.LastIndex(link, "/"); i >= 0 && i < len(link)-1 {
		return link[i+1:]
	}
	return link
}
