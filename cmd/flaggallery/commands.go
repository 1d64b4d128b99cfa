package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/phanxgames/flaggallery"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// appName namespaces the per-user resume storage.
const appName = "flaggallery"

var (
	width      int
	height     int
	imagesDir  string
	resume     bool
	watch      bool
	showHUD    bool
	fullscreen bool
	shotDir    string
	shotFormat string

	replayTicks  int
	replayWindow bool
	layoutMode   string
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", 1280, "Window width")
	cmd.Flags().IntVar(&height, "height", 720, "Window height")
	cmd.Flags().StringVar(&imagesDir, "images", "", "Directory item image references resolve against")
	cmd.Flags().BoolVar(&resume, "resume", false, "Start at the item viewed last and remember the current one")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild the session when the items file changes (requires --items)")
	cmd.Flags().BoolVar(&showHUD, "hud", false, "Show the FPS and state overlay")
	cmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "Start in fullscreen")
	cmd.Flags().StringVar(&shotDir, "screenshot-dir", "screenshots", "Directory for screenshots")
	cmd.Flags().StringVar(&shotFormat, "screenshot-format", "png", "Screenshot format: png or webp")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the gallery window",
	Args:  cobra.NoArgs,
	RunE:  runGallery,
}

var replayCmd = &cobra.Command{
	Use:   "replay [script]",
	Short: "Replay an input script and check its expectations",
	Long: `Replays a YAML or JSON script of input steps against a fresh session.

Headless by default: the session is stepped at the game tick rate without a
window, so the command fits CI. With --window the replay is shown and
screenshot steps are written to --screenshot-dir.`,
	Args: cobra.ExactArgs(1),
	RunE: replayScript,
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the linear and gallery positions of every item",
	Args:  cobra.NoArgs,
	RunE:  printLayout,
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Validate the item list and print a summary",
	Args:  cobra.NoArgs,
	RunE:  listItems,
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadConfig() (*flaggallery.Config, error) {
	if configPath == "" {
		cfg := flaggallery.DefaultConfig()
		return &cfg, nil
	}
	cfg, err := flaggallery.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadItems() ([]flaggallery.Item, error) {
	if itemsPath == "" {
		return flaggallery.DefaultItems(), nil
	}
	return flaggallery.LoadItems(itemsPath)
}

func imagesFS() fs.FS {
	if imagesDir == "" {
		return nil
	}
	return os.DirFS(imagesDir)
}

func screenshotFormat() (flaggallery.ScreenshotFormat, error) {
	switch f := flaggallery.ScreenshotFormat(shotFormat); f {
	case flaggallery.ScreenshotPNG, flaggallery.ScreenshotWebP:
		return f, nil
	}
	return "", fmt.Errorf("unknown screenshot format %q", shotFormat)
}

// gameOptions collects the flags shared by run and replay.
func gameOptions() (flaggallery.GameOptions, error) {
	cfg, err := loadConfig()
	if err != nil {
		return flaggallery.GameOptions{}, err
	}
	items, err := loadItems()
	if err != nil {
		return flaggallery.GameOptions{}, err
	}
	format, err := screenshotFormat()
	if err != nil {
		return flaggallery.GameOptions{}, err
	}
	return flaggallery.GameOptions{
		Config:           cfg,
		Items:            items,
		Images:           imagesFS(),
		Logger:           logger,
		Opener:           flaggallery.LinkOpenerFunc(openBrowser),
		Width:            width,
		Height:           height,
		ShowHUD:          showHUD,
		ScreenshotDir:    shotDir,
		ScreenshotFormat: format,
	}, nil
}

func runGallery(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	opts, err := gameOptions()
	if err != nil {
		return err
	}
	if resume {
		opts.Resume = flaggallery.OpenResumeStore(appName, logger)
	}
	game, err := flaggallery.NewGame(ctx, opts)
	if err != nil {
		return err
	}

	if watch {
		if itemsPath == "" {
			return errors.New("--watch requires --items")
		}
		w, err := flaggallery.NewItemsWatcher(itemsPath, flaggallery.DefaultWatchDebounce, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return err
		}
		defer w.Stop()
		game.WatchItems(w.Updates())
	}

	logger.Info("gallery starting",
		zap.Int("items", len(opts.Items)),
		zap.String("session", game.Orchestrator().Session()))
	return flaggallery.Run(game, flaggallery.RunConfig{
		Width:      width,
		Height:     height,
		Fullscreen: fullscreen,
	})
}

func replayScript(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	runner, err := flaggallery.LoadTestScript(data)
	if err != nil {
		return err
	}
	opts, err := gameOptions()
	if err != nil {
		return err
	}
	opts.Headless = !replayWindow
	opts.ExitOnScriptEnd = true
	// Replays never open links.
	opts.Opener = flaggallery.LinkOpenerFunc(func(url string) error {
		logger.Info("link activated", zap.String("url", url))
		return nil
	})

	game, err := flaggallery.NewGame(ctx, opts)
	if err != nil {
		return err
	}
	game.SetTestRunner(runner)

	if opts.Headless {
		err = game.RunHeadless(ctx, replayTicks)
	} else {
		err = flaggallery.Run(game, flaggallery.RunConfig{Title: "Flag Gallery replay"})
		if err == nil && len(runner.Failures()) > 0 {
			err = fmt.Errorf("%w: %d expectation(s)", flaggallery.ErrScriptFailed, len(runner.Failures()))
		}
	}
	for _, f := range runner.Failures() {
		fmt.Fprintln(cmd.ErrOrStderr(), "FAIL", f)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok", args[0])
	return nil
}

type layoutEntry struct {
	Index   int               `yaml:"index"`
	Title   string            `yaml:"title"`
	Linear  *flaggallery.Vec3 `yaml:"linear,omitempty"`
	Gallery *flaggallery.Vec3 `yaml:"gallery,omitempty"`
	Relaxed bool              `yaml:"relaxed,omitempty"`
}

func printLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	items, err := loadItems()
	if err != nil {
		return err
	}
	if layoutMode != "linear" && layoutMode != "gallery" && layoutMode != "both" {
		return fmt.Errorf("unknown layout mode %q", layoutMode)
	}

	l := flaggallery.NewLayout(cfg.Layout)
	scattered := l.ScatteredAll(len(items))
	out := make([]layoutEntry, len(items))
	for i, it := range items {
		e := layoutEntry{Index: i, Title: it.Title}
		if layoutMode != "gallery" {
			p := l.Linear(i)
			e.Linear = &p
		}
		if layoutMode != "linear" {
			p := scattered[i].Pos
			e.Gallery = &p
			e.Relaxed = scattered[i].Relaxed
		}
		out[i] = e
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return enc.Close()
}

func listItems(cmd *cobra.Command, args []string) error {
	items, err := loadItems()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for i, it := range items {
		link := it.Link()
		if link == "" {
			link = "-"
		}
		fmt.Fprintf(w, "%2d  %-20s  %d tag(s)  %d image(s)  %s\n", i, it.Title, len(it.Tags), len(it.Images), link)
	}
	fmt.Fprintf(w, "%d item(s) valid\n", len(items))
	return nil
}

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
