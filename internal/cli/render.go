package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightcompare/pkg/entity"
	hcio "github.com/matzehuels/heightcompare/pkg/io"
	"github.com/matzehuels/heightcompare/pkg/pipeline"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 200 * time.Millisecond

// chartFlags are the chart options shared by "render" and "board render".
type chartFlags struct {
	output      string
	formats     string
	mode        string
	height      float64
	title       string
	watermark   string
	noWatermark bool
	noGrid      bool
	scale       float64
	noCache     bool
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "unit mode: auto, cm, ft (default: the board's mode)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "drawing height in pixels")
	cmd.Flags().StringVar(&f.title, "title", "", "chart title (default: the board name)")
	cmd.Flags().StringVar(&f.watermark, "watermark", "", "watermark text")
	cmd.Flags().BoolVar(&f.noWatermark, "no-watermark", false, "omit the watermark")
	cmd.Flags().BoolVar(&f.noGrid, "no-grid", false, "omit grid lines")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG scale factor")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "render without reading or writing the artifact cache")
}

// options builds pipeline options; boardMode applies when --mode is unset.
func (f *chartFlags) options(name string, boardMode units.Mode) (pipeline.Options, error) {
	opts := pipeline.Options{
		Mode:        boardMode,
		Formats:     parseFormats(f.formats),
		Height:      f.height,
		Title:       f.title,
		Watermark:   f.watermark,
		NoWatermark: f.noWatermark,
		NoGrid:      f.noGrid,
		Scale:       f.scale,
		Board:       name,
	}
	if opts.Title == "" {
		opts.Title = name
	}
	if f.mode != "" {
		mode, err := units.ParseMode(f.mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return opts, err
	}
	if f.output == "-" && len(opts.Formats) > 1 {
		return opts, fmt.Errorf("cannot write %d formats to stdout", len(opts.Formats))
	}
	return opts, nil
}

// renderCommand renders a board file without persisting anything.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags chartFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "render <board-file>",
		Short: "Render a board file (YAML or JSON) to a chart",
		Example: `  heightcompare render team.yaml
  heightcompare render team.yaml -f svg,png -o out/team
  heightcompare render team.yaml --mode ft --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if err := c.renderFile(ctx, runner, args[0], &flags); err != nil {
				if !watch {
					return err
				}
				printError("%v", err)
			}
			if !watch {
				return nil
			}
			return c.watchFile(ctx, args[0], func() error {
				return c.renderFile(ctx, runner, args[0], &flags)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render whenever the board file changes")

	return cmd
}

func (c *CLI) renderFile(ctx context.Context, runner *pipeline.Runner, path string, flags *chartFlags) error {
	prog := newProgress(c.Logger)
	board, err := hcio.ImportBoard(path)
	if err != nil {
		return err
	}
	people, err := board.Collection()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	name := board.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	opts, err := flags.options(name, board.Mode)
	if err != nil {
		return err
	}
	c.chartDefaults(&opts)

	outputs, err := c.renderPeople(ctx, runner, people.List(), opts, basePath(flags.output, path))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", path))
	for _, o := range outputs {
		printFile(o)
	}
	return nil
}

// renderPeople renders and writes every requested format, returning the
// paths written. A base of "-" writes the single artifact to stdout.
func (c *CLI) renderPeople(ctx context.Context, runner *pipeline.Runner, people []entity.Entity, opts pipeline.Options, base string) ([]string, error) {
	result, err := runner.Render(ctx, people, opts)
	if err != nil {
		return nil, err
	}
	if base == "-" {
		_, err := os.Stdout.Write(result.Artifacts[opts.Formats[0]])
		return nil, err
	}
	printChartStats(result.Stats.People, result.Stats.Marks, result.Resolution.Unit.String(), result.CacheInfo.RenderHit)
	paths, err := writeArtifacts(base, result.Artifacts, opts.Formats)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// writeArtifacts writes base.<format> for each format, creating parent
// directories as needed.
func writeArtifacts(base string, artifacts map[string][]byte, formats []string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	var written []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := base + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// basePath derives the output base path. Without an explicit output, the
// input's extension is stripped; a known format extension on output is
// stripped too.
func basePath(output, input string) string {
	if output == "-" {
		return output
	}
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// watchFile calls fn after each change to path until ctx is cancelled.
// The parent directory is watched so editors that replace the file on save
// keep triggering.
func (c *CLI) watchFile(ctx context.Context, path string, fn func() error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	printInfo("Watching %s (ctrl+c to stop)", path)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timerCh:
			timerCh = nil
			if err := fn(); err != nil {
				printError("%v", err)
			}
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			c.Logger.Debug("board file changed", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			timerCh = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "error", err)
		}
	}
}

