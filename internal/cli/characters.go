package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/catalog/mongo"
	"github.com/matzehuels/heightcompare/pkg/catalog/seed"
	"github.com/matzehuels/heightcompare/pkg/catalog/sqlite"
	"github.com/matzehuels/heightcompare/pkg/config"
	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/render/taxonomy"
	"github.com/matzehuels/heightcompare/pkg/session"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// maxSample caps "sample" and "characters random".
const maxSample = 50

// =============================================================================
// characters
// =============================================================================

func (c *CLI) charactersCommand() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"chars"},
		Short:   "Browse the character catalog",
	}
	cmd.PersistentFlags().BoolVar(&refresh, "refresh", false, "bypass memoized and cached catalog data")

	cmd.AddCommand(c.charactersListCommand(&refresh))
	cmd.AddCommand(c.charactersSearchCommand(&refresh))
	cmd.AddCommand(c.charactersRandomCommand(&refresh))
	cmd.AddCommand(c.charactersShowCommand(&refresh))
	cmd.AddCommand(c.charactersStatsCommand(&refresh))
	return cmd
}

func (c *CLI) charactersListCommand(refresh *bool) *cobra.Command {
	var (
		cats    []int
		genders []string
		limit   int
		unitStr string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List characters, optionally filtered",
		Example: `  heightcompare characters list --category 3 --limit 20
  heightcompare characters list --gender female --unit ft`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := units.ParseDisplayUnit(unitStr)
			if err != nil {
				return err
			}
			return c.withCatalog(cmd.Context(), *refresh, func(ctx context.Context, cat *catalogHandle) error {
				chars, err := cat.Filter(ctx, catalog.Query{Categories: cats, Genders: lower(genders), Limit: limit})
				if err != nil {
					return err
				}
				printCharacters(chars, unit)
				return nil
			})
		},
	}
	cmd.Flags().IntSliceVarP(&cats, "category", "c", nil, "category IDs (repeatable)")
	cmd.Flags().StringSliceVarP(&genders, "gender", "g", nil, "genders (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum results (0 for all)")
	cmd.Flags().StringVarP(&unitStr, "unit", "u", "cm", "height unit: cm, m, km, ft")
	return cmd
}

func (c *CLI) charactersSearchCommand(refresh *bool) *cobra.Command {
	var (
		limit   int
		unitStr string
	)
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search characters by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := units.ParseDisplayUnit(unitStr)
			if err != nil {
				return err
			}
			q := strings.Join(args, " ")
			return c.withCatalog(cmd.Context(), *refresh, func(ctx context.Context, cat *catalogHandle) error {
				chars, err := cat.Search(ctx, q, limit)
				if err != nil {
					return err
				}
				if len(chars) == 0 {
					printInfo("No characters match %q", q)
					return nil
				}
				printCharacters(chars, unit)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum results")
	cmd.Flags().StringVarP(&unitStr, "unit", "u", "cm", "height unit: cm, m, km, ft")
	return cmd
}

func (c *CLI) charactersRandomCommand(refresh *bool) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Pick random characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSample(n); err != nil {
				return err
			}
			return c.withCatalog(cmd.Context(), *refresh, func(ctx context.Context, cat *catalogHandle) error {
				chars, err := cat.Random(ctx, n)
				if err != nil {
					return err
				}
				printCharacters(chars, units.Centimeter)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 5, "how many")
	return cmd
}

func (c *CLI) charactersShowCommand(refresh *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd.Context(), *refresh, func(ctx context.Context, cat *catalogHandle) error {
				ch, err := cat.ByID(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, StyleTitle.Render(ch.Name))
				printKeyValue("ID", ch.ID)
				printKeyValue("Height", fmt.Sprintf("%s (%s)", units.FormatHeight(ch.Height, units.Centimeter), units.FormatFeetInches(ch.Height)))
				printKeyValue("Category", joinNonEmpty(" / ", ch.Category, ch.Subcategory))
				printKeyValue("Gender", ch.Gender)
				if ch.Color != "" {
					printKeyValue("Color", swatch(ch.Color))
				}
				if ch.Source != "" {
					printKeyValue("Source", ch.Source)
				}
				if ch.ImageURL != "" {
					printKeyValue("Image", StyleLink.Render(ch.ImageURL))
				}
				if ch.Description != "" {
					printNewline()
					printDetail("%s", ch.Description)
				}
				return nil
			})
		},
	}
}

func (c *CLI) charactersStatsCommand(refresh *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd.Context(), *refresh, func(ctx context.Context, cat *catalogHandle) error {
				st, err := cat.Stats(ctx)
				if err != nil {
					return err
				}
				cats, err := cat.Categories(ctx)
				if err != nil {
					return err
				}
				printStatsSummary(st, cats, cat.Backend())
				return nil
			})
		},
	}
}

func printStatsSummary(st catalog.Stats, cats []catalog.Category, backend string) {
	printKeyValue("Backend", backend)
	printKeyValue("Characters", humanize.Comma(int64(st.Total)))
	printKeyValue("Shortest", units.FormatHeight(st.HeightRange.Min, units.Centimeter))
	printKeyValue("Tallest", units.FormatHeight(st.HeightRange.Max, units.Centimeter))
	printKeyValue("Average", units.FormatHeight(st.HeightRange.Average, units.Centimeter))

	genders := make([]string, 0, len(st.ByGender))
	for g := range st.ByGender {
		genders = append(genders, g)
	}
	sort.Strings(genders)
	t := newTable("Gender", "Count")
	for _, g := range genders {
		t.Row(g, humanize.Comma(int64(st.ByGender[g])))
	}
	fmt.Fprintln(stdout, t.Render())

	names := make(map[int]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	ids := make([]int, 0, len(st.ByCategory))
	for id := range st.ByCategory {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ct := newTable("ID", "Category", "Count")
	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = catalog.UnknownCategory
		}
		ct.Row(strconv.Itoa(id), name, humanize.Comma(int64(st.ByCategory[id])))
	}
	fmt.Fprintln(stdout, ct.Render())
}

// =============================================================================
// categories
// =============================================================================

func (c *CLI) categoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect catalog categories",
	}
	cmd.AddCommand(c.categoriesListCommand())
	cmd.AddCommand(c.categoriesGraphCommand())
	return cmd
}

func (c *CLI) categoriesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd.Context(), false, func(ctx context.Context, cat *catalogHandle) error {
				cats, err := cat.Categories(ctx)
				if err != nil {
					return err
				}
				st, err := cat.Stats(ctx)
				if err != nil {
					return err
				}
				t := newTable("ID", "Name", "Path", "Characters")
				for _, k := range cats {
					t.Row(strconv.Itoa(k.ID), k.Name, k.Path, humanize.Comma(int64(st.ByCategory[k.ID])))
				}
				fmt.Fprintln(stdout, t.Render())
				return nil
			})
		},
	}
}

func (c *CLI) categoriesGraphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the category tree with Graphviz",
		Example: `  heightcompare categories graph -o categories.svg
  heightcompare categories graph -f dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd.Context(), false, func(ctx context.Context, cat *catalogHandle) error {
				cats, err := cat.Categories(ctx)
				if err != nil {
					return err
				}
				st, err := cat.Stats(ctx)
				if err != nil {
					return err
				}
				dot := taxonomy.ToDOT(cats, taxonomy.Options{Counts: st.ByCategory, Detailed: detailed})

				var data []byte
				switch format {
				case "dot":
					data = []byte(dot)
				case "svg":
					data, err = taxonomy.RenderSVG(ctx, dot)
				case "png":
					data, err = taxonomy.RenderPNG(ctx, dot)
				default:
					return fmt.Errorf("invalid format: %s (must be 'svg', 'png' or 'dot')", format)
				}
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err := stdout.Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printSuccess("Drew %d categories", len(cats))
				printFile(output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, png, dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with IDs and paths")
	return cmd
}

// =============================================================================
// sample / browse
// =============================================================================

func (c *CLI) sampleCommand() *cobra.Command {
	var (
		n    int
		keep bool
	)
	cmd := &cobra.Command{
		Use:   "sample <board>",
		Short: "Fill a board with random characters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSample(n); err != nil {
				return err
			}
			return c.withCatalog(cmd.Context(), false, func(ctx context.Context, cat *catalogHandle) error {
				chars, err := cat.Random(ctx, n)
				if err != nil {
					return err
				}
				return c.editBoard(ctx, args[0], func(b *session.Session, people *entity.Collection) error {
					if !keep {
						people.Clear()
					}
					if err := addCharacters(people, chars); err != nil {
						return err
					}
					printSuccess("Added %d characters to %s", len(chars), b.Name)
					return nil
				})
			})
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 5, "how many characters")
	cmd.Flags().BoolVarP(&keep, "append", "a", false, "keep the board's current people")
	return cmd
}

func (c *CLI) browseCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "browse <board>",
		Short: "Pick characters interactively and add them to a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd.Context(), false, func(ctx context.Context, cat *catalogHandle) error {
				chars, err := cat.Characters(ctx)
				if err != nil {
					return err
				}
				m := NewCharacterListModel(chars, units.Centimeter, limit)
				final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
				if err != nil {
					return err
				}
				picked := final.(CharacterListModel).Selection()
				if len(picked) == 0 {
					printInfo("Nothing added")
					return nil
				}
				return c.editBoard(ctx, args[0], func(b *session.Session, people *entity.Collection) error {
					if err := addCharacters(people, picked); err != nil {
						return err
					}
					printSuccess("Added %d characters to %s", len(picked), b.Name)
					for _, ch := range picked {
						printDetail("%s (%s)", ch.Name, units.FormatHeight(ch.Height, units.Centimeter))
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum characters to pick (0 for no limit)")
	return cmd
}

func addCharacters(people *entity.Collection, chars []catalog.Character) error {
	for _, ch := range chars {
		if _, err := people.Add(entity.FromCharacter(ch)); err != nil {
			return fmt.Errorf("add %s: %w", ch.Name, err)
		}
	}
	return nil
}

// =============================================================================
// catalog
// =============================================================================

func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Mirror and export the character catalog",
	}
	cmd.AddCommand(c.catalogSyncCommand())
	cmd.AddCommand(c.catalogExportCommand())
	return cmd
}

func (c *CLI) catalogSyncCommand() *cobra.Command {
	var (
		to   string
		path string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy the configured catalog into a local SQLite or MongoDB mirror",
		Example: `  heightcompare catalog sync
  heightcompare catalog sync --to mongo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == c.Config.Catalog.Backend {
				return fmt.Errorf("catalog backend is already %s", to)
			}
			return c.withCatalog(cmd.Context(), true, func(ctx context.Context, cat *catalogHandle) error {
				spin := newSpinnerWithContext(ctx, "Syncing catalog from "+cat.Backend())
				spin.Start()
				n, dest, err := c.syncTo(ctx, cat, to, path)
				if err != nil {
					spin.StopWithError("Sync failed")
					return err
				}
				spin.StopWithSuccess(fmt.Sprintf("Synced %s characters to %s", humanize.Comma(int64(n)), to))
				printDetail("Destination: %s", dest)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", config.BackendSQLite, "destination: sqlite, mongo")
	cmd.Flags().StringVar(&path, "path", "", "SQLite file (default: sqlite.path from the config)")
	return cmd
}

func (c *CLI) syncTo(ctx context.Context, src catalog.Source, to, path string) (int, string, error) {
	switch to {
	case config.BackendSQLite:
		if path == "" {
			path = c.Config.SQLite.Path
		}
		path = config.ExpandHome(path)
		st, err := sqlite.Open(path)
		if err != nil {
			return 0, "", err
		}
		defer st.Close()
		n, err := st.Sync(ctx, src)
		return n, path, err
	case config.BackendMongo:
		st, err := mongo.Connect(ctx, c.Config.Mongo.URI, c.Config.Mongo.Database)
		if err != nil {
			return 0, "", err
		}
		defer func() {
			cctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			_ = st.Close(cctx)
		}()
		if err := st.EnsureIndexes(ctx); err != nil {
			return 0, "", err
		}
		n, err := catalog.Sync(ctx, st, src)
		return n, c.Config.Mongo.Database, err
	}
	return 0, "", fmt.Errorf("invalid sync destination: %s (must be 'sqlite' or 'mongo')", to)
}

func (c *CLI) catalogExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as a YAML seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd.Context(), false, func(ctx context.Context, cat *catalogHandle) error {
				chars, err := cat.Characters(ctx)
				if err != nil {
					return err
				}
				cats, err := cat.Categories(ctx)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return seed.Write(stdout, chars, cats)
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := seed.Write(f, chars, cats); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				printSuccess("Exported %s characters", humanize.Comma(int64(len(chars))))
				printFile(output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "seed file (default stdout)")
	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

// withCatalog opens the catalog for the duration of fn.
func (c *CLI) withCatalog(ctx context.Context, refresh bool, fn func(context.Context, *catalogHandle) error) error {
	cat, err := c.openCatalog(ctx, refresh)
	if err != nil {
		return err
	}
	defer cat.Close()
	return fn(ctx, cat)
}

func printCharacters(chars []catalog.Character, unit units.DisplayUnit) {
	t := newTable("ID", "Name", "Height", "Category", "Gender")
	for _, ch := range chars {
		t.Row(ch.ID, ch.Name, units.FormatHeight(ch.Height, unit), joinNonEmpty(" / ", ch.Category, ch.Subcategory), ch.Gender)
	}
	fmt.Fprintln(stdout, t.Render())
	printDetail("%d characters", len(chars))
}

func checkSample(n int) error {
	if n < 1 || n > maxSample {
		return fmt.Errorf("count must be between 1 and %d", maxSample)
	}
	return nil
}

func lower(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
