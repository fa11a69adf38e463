package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/errors"
	hcio "github.com/matzehuels/heightcompare/pkg/io"
	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/session"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// boardCommand groups the persisted-board subcommands.
func (c *CLI) boardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "board",
		Aliases: []string{"boards"},
		Short:   "Create and edit saved boards",
		Long: `Boards are saved height charts. Refer to a board by its ID, a unique ID
prefix or its exact name; refer to a person the same way.`,
	}

	cmd.AddCommand(c.boardNewCommand())
	cmd.AddCommand(c.boardListCommand())
	cmd.AddCommand(c.boardShowCommand())
	cmd.AddCommand(c.boardAddCommand())
	cmd.AddCommand(c.boardRemoveCommand())
	cmd.AddCommand(c.boardUpdateCommand())
	cmd.AddCommand(c.boardClearCommand())
	cmd.AddCommand(c.boardModeCommand())
	cmd.AddCommand(c.boardRenderCommand())
	cmd.AddCommand(c.boardDeleteCommand())
	cmd.AddCommand(c.boardImportCommand())
	cmd.AddCommand(c.boardExportCommand())

	c.completeBoardArgs(cmd.Commands()...)
	return cmd
}

func (c *CLI) boardNewCommand() *cobra.Command {
	var modeStr string
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create an empty board",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := units.ParseMode(modeStr)
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.withBoards(cmd.Context(), func(ctx context.Context, store session.Store) error {
				b, err := session.New(name, 0)
				if err != nil {
					return err
				}
				b.Mode = mode
				if err := store.Set(ctx, b); err != nil {
					return err
				}
				printSuccess("Created board %s", StyleHighlight.Render(b.Name))
				printKeyValue("ID", b.ID)
				printNextStep("Add someone", fmt.Sprintf("heightcompare board add %s \"Ana\" 168cm", b.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&modeStr, "mode", "m", "auto", "unit mode: auto, cm, ft")
	return cmd
}

func (c *CLI) boardListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved boards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBoards(cmd.Context(), func(ctx context.Context, store session.Store) error {
				boards, err := store.List(ctx)
				if err != nil {
					return err
				}
				if len(boards) == 0 {
					printInfo("No boards yet")
					printNextStep("Create one", "heightcompare board new \"My board\"")
					return nil
				}
				t := newTable("ID", "Name", "People", "Mode", "Unit", "Updated")
				for _, b := range boards {
					t.Row(b.ID, b.Name, fmt.Sprintf("%d", len(b.People)), b.Mode.String(),
						b.Resolution().Unit.String(), humanize.Time(b.UpdatedAt))
				}
				fmt.Fprintln(stdout, t.Render())
				return nil
			})
		},
	}
}

func (c *CLI) boardShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <board>",
		Short: "Show a board's people and scale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBoards(cmd.Context(), func(ctx context.Context, store session.Store) error {
				b, err := resolveBoard(ctx, store, args[0])
				if err != nil {
					return err
				}
				printBoard(b)
				return nil
			})
		},
	}
}

func printBoard(b *session.Session) {
	res := b.Resolution()
	fmt.Fprintln(stdout, StyleTitle.Render(b.Name))
	printKeyValue("ID", b.ID)
	printKeyValue("Mode", b.Mode.String())
	printKeyValue("Unit", res.Unit.String())
	printKeyValue("Created", humanize.Time(b.CreatedAt))
	printKeyValue("Updated", humanize.Time(b.UpdatedAt))
	if len(b.People) == 0 {
		printNewline()
		printInfo("No people on this board")
		return
	}
	t := newTable("ID", "Name", "Height", "Gender", "Color")
	for _, p := range b.People {
		t.Row(p.ID, p.Name, units.FormatHeight(p.Height, res.Unit), string(p.Gender), swatch(p.Color.Hex()))
	}
	fmt.Fprintln(stdout, t.Render())
}

// personFlags are the optional person attributes of "add" and "update".
type personFlags struct {
	name   string
	height string
	gender string
	color  string
	image  string
}

func (c *CLI) boardAddCommand() *cobra.Command {
	var f personFlags
	cmd := &cobra.Command{
		Use:   "add <board> <name> <height>",
		Short: "Add a person to a board",
		Example: `  heightcompare board add team "Ana" 168cm --gender female
  heightcompare board add team "Sam" "6'1" --color "#3366cc"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := units.ParseHeight(args[2])
			if err != nil {
				return err
			}
			spec := hcio.Person{Name: args[1], Height: hcio.Height(h), Gender: f.gender, Color: f.color, Image: f.image}
			s, err := spec.Spec()
			if err != nil {
				return err
			}
			return c.editBoard(cmd.Context(), args[0], func(b *session.Session, people *entity.Collection) error {
				e, err := people.Add(s)
				if err != nil {
					return err
				}
				printSuccess("Added %s (%s) to %s", StyleHighlight.Render(e.Name), units.FormatCm(e.Height)+"cm", b.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.gender, "gender", "", "male, female or other")
	cmd.Flags().StringVar(&f.color, "color", "", "figure color as #rrggbb (default: palette)")
	cmd.Flags().StringVar(&f.image, "image", "", "image URL")
	return cmd
}

func (c *CLI) boardRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <board> <person>",
		Aliases: []string{"rm"},
		Short:   "Remove a person from a board",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editBoard(cmd.Context(), args[0], func(b *session.Session, people *entity.Collection) error {
				p, err := resolvePerson(people, args[1])
				if err != nil {
					return err
				}
				people.Remove(p.ID)
				printSuccess("Removed %s from %s", StyleHighlight.Render(p.Name), b.Name)
				return nil
			})
		},
	}
}

func (c *CLI) boardUpdateCommand() *cobra.Command {
	var f personFlags
	cmd := &cobra.Command{
		Use:   "update <board> <person>",
		Short: "Change a person's attributes",
		Example: `  heightcompare board update team Ana --height 170cm
  heightcompare board update team Sam --color "#aa3300" --name "Samuel"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			return c.editBoard(cmd.Context(), args[0], func(b *session.Session, people *entity.Collection) error {
				p, err := resolvePerson(people, args[1])
				if err != nil {
					return err
				}
				e, err := people.Update(p.ID, patch)
				if err != nil {
					return err
				}
				printSuccess("Updated %s", StyleHighlight.Render(e.Name))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.name, "name", "", "new name")
	cmd.Flags().StringVar(&f.height, "height", "", "new height expression")
	cmd.Flags().StringVar(&f.gender, "gender", "", "male, female or other")
	cmd.Flags().StringVar(&f.color, "color", "", "figure color as #rrggbb")
	cmd.Flags().StringVar(&f.image, "image", "", "image URL (empty string clears it)")
	return cmd
}

// patch converts the flags the user actually set into an entity patch.
func (f *personFlags) patch(cmd *cobra.Command) (entity.Patch, error) {
	var p entity.Patch
	set := cmd.Flags().Changed
	if set("name") {
		if err := errors.ValidateName(f.name); err != nil {
			return p, err
		}
		p.Name = &f.name
	}
	if set("height") {
		h, err := units.ParseHeight(f.height)
		if err != nil {
			return p, err
		}
		p.Height = &h
	}
	if set("gender") {
		g := entity.ParseGender(f.gender)
		p.Gender = &g
	}
	if set("color") {
		col, err := entity.ParseColor(f.color)
		if err != nil {
			return p, err
		}
		p.Color = &col
	}
	if set("image") {
		if f.image != "" {
			if err := errors.ValidateURL(f.image); err != nil {
				return p, err
			}
		}
		p.ImageURL = &f.image
	}
	if p.Empty() {
		return p, errors.New(errors.ErrCodeInvalidInput, "nothing to update (use --name, --height, --gender, --color or --image)")
	}
	return p, nil
}

func (c *CLI) boardClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <board>",
		Short: "Remove everyone from a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editBoard(cmd.Context(), args[0], func(b *session.Session, people *entity.Collection) error {
				n := people.Len()
				people.Clear()
				printSuccess("Cleared %d people from %s", n, b.Name)
				return nil
			})
		},
	}
}

func (c *CLI) boardModeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "mode <board> <auto|cm|ft>",
		Short:     "Set a board's unit mode",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"auto", "cm", "ft"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := units.ParseMode(args[1])
			if err != nil {
				return err
			}
			return c.editBoard(cmd.Context(), args[0], func(b *session.Session, people *entity.Collection) error {
				b.Mode = mode
				res := scale.SelectFor(people.List(), mode)
				printSuccess("%s now charts in %s mode (%s)", b.Name, mode, res.Unit)
				return nil
			})
		},
	}
}

func (c *CLI) boardRenderCommand() *cobra.Command {
	var flags chartFlags
	cmd := &cobra.Command{
		Use:   "render <board>",
		Short: "Render a saved board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBoards(cmd.Context(), func(ctx context.Context, store session.Store) error {
				b, err := resolveBoard(ctx, store, args[0])
				if err != nil {
					return err
				}
				opts, err := flags.options(b.Name, b.Mode)
				if err != nil {
					return err
				}
				c.chartDefaults(&opts)
				runner, err := c.newRunner(ctx, flags.noCache)
				if err != nil {
					return err
				}
				defer runner.Close()

				base := flags.output
				if base == "" {
					base = slug(b.Name)
				}
				paths, err := c.renderPeople(ctx, runner, b.People, opts, basePath(base, base))
				if err != nil {
					return err
				}
				for _, p := range paths {
					printFile(p)
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) boardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board>",
		Short: "Delete a saved board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBoards(cmd.Context(), func(ctx context.Context, store session.Store) error {
				b, err := resolveBoard(ctx, store, args[0])
				if err != nil {
					return err
				}
				if err := store.Delete(ctx, b.ID); err != nil {
					return err
				}
				printSuccess("Deleted board %s", b.Name)
				return nil
			})
		},
	}
}

func (c *CLI) boardImportCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a board from a YAML or JSON board file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := hcio.ImportBoard(args[0])
			if err != nil {
				return err
			}
			people, err := f.Collection()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if name == "" {
				name = f.Name
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			return c.withBoards(cmd.Context(), func(ctx context.Context, store session.Store) error {
				b, err := session.New(name, 0)
				if err != nil {
					return err
				}
				b.Mode = f.Mode
				b.Save(people)
				if err := store.Set(ctx, b); err != nil {
					return err
				}
				printSuccess("Imported %d people into %s", people.Len(), StyleHighlight.Render(b.Name))
				printKeyValue("ID", b.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "board name (default: the file's name)")
	return cmd
}

func (c *CLI) boardExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <board> <file>",
		Short: "Write a board to a YAML or JSON board file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBoards(cmd.Context(), func(ctx context.Context, store session.Store) error {
				b, err := resolveBoard(ctx, store, args[0])
				if err != nil {
					return err
				}
				if err := hcio.ExportBoard(args[1], hcio.FromPeople(b.Name, b.Mode, b.People)); err != nil {
					return err
				}
				printSuccess("Exported %s", b.Name)
				printFile(args[1])
				return nil
			})
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// withBoards opens the board store for the duration of fn.
func (c *CLI) withBoards(ctx context.Context, fn func(context.Context, session.Store) error) error {
	store, err := c.openBoards(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

// editBoard loads a board, applies fn to its people and saves the result.
func (c *CLI) editBoard(ctx context.Context, ref string, fn func(*session.Session, *entity.Collection) error) error {
	return c.withBoards(ctx, func(ctx context.Context, store session.Store) error {
		b, err := resolveBoard(ctx, store, ref)
		if err != nil {
			return err
		}
		people, err := b.Collection()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "board %s is corrupt", b.ID)
		}
		if err := fn(b, people); err != nil {
			return err
		}
		b.Save(people)
		return store.Set(ctx, b)
	})
}

// resolveBoard finds a board by exact ID, unique ID prefix or exact name.
func resolveBoard(ctx context.Context, store session.Store, ref string) (*session.Session, error) {
	if errors.ValidateBoardID(ref) == nil {
		b, err := store.Get(ctx, ref)
		if err == nil {
			return b, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	boards, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*session.Session
	for _, b := range boards {
		if strings.HasPrefix(b.ID, ref) || strings.EqualFold(b.Name, ref) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.New(errors.ErrCodeBoardNotFound, "no board matches %q", ref)
	case 1:
		return matches[0], nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "%q matches %d boards; use the ID", ref, len(matches))
}

// resolvePerson finds a person by exact ID, unique ID prefix or name.
func resolvePerson(people *entity.Collection, ref string) (entity.Entity, error) {
	if e, ok := people.Get(ref); ok {
		return e, nil
	}
	var matches []entity.Entity
	for _, e := range people.List() {
		if strings.HasPrefix(e.ID, ref) || strings.EqualFold(e.Name, ref) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return entity.Entity{}, errors.New(errors.ErrCodePersonNotFound, "no person matches %q", ref)
	case 1:
		return matches[0], nil
	}
	return entity.Entity{}, errors.New(errors.ErrCodeInvalidInput, "%q matches %d people; use the ID", ref, len(matches))
}

// slug turns a board name into a file name.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "board"
	}
	return s
}
