package flaggallery

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
)

// ErrScriptFailed is returned (wrapped) by RunHeadless when an expectation
// of the replay script did not hold.
var ErrScriptFailed = errors.New("script failed")

// GameOptions configures a Game. The zero value shows the built-in items
// with the default tuning.
type GameOptions struct {
	Config     *Config
	Items      []Item // nil means DefaultItems
	Images     fs.FS  // root that item image references resolve against; nil disables images
	StartIndex int
	Resume     *ResumeStore // when set, overrides StartIndex and records the current item
	Logger     *zap.Logger
	Opener     LinkOpener

	Width, Height int

	// Headless skips input polling, textures and screenshots so that a Game
	// can be stepped without a window.
	Headless bool
	ShowHUD  bool
	// ExitOnScriptEnd stops the game loop once the replay script finishes.
	ExitOnScriptEnd bool

	ScreenshotDir    string
	ScreenshotFormat ScreenshotFormat
}

// Game is the ebiten.Game of a gallery session. It owns the orchestrator
// and everything that feeds it or draws it.
type Game struct {
	opts GameOptions
	cfg  Config
	log  *zap.Logger

	orch     *Orchestrator
	renderer *Renderer
	textures *TextureBuilder
	input    *InputAdapter
	inject   injectQueue
	quads    []HitQuad
	runner   *TestRunner
	resume   *ResumeStore
	reloads  <-chan []Item
	hud      *hud

	headless   bool
	shots      []string
	shotDir    string
	shotFormat ScreenshotFormat

	width, height int
	dt            float64
}

// NewGame builds a session from opts. Cover images are decoded before it
// returns; ctx bounds that work.
func NewGame(ctx context.Context, opts GameOptions) (*Game, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	items := opts.Items
	if items == nil {
		items = DefaultItems()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "screenshots"
	}
	if opts.ScreenshotFormat == "" {
		opts.ScreenshotFormat = ScreenshotPNG
	}

	g := &Game{
		opts:       opts,
		cfg:        cfg,
		log:        log,
		textures:   NewTextureBuilder(cfg.Render),
		resume:     opts.Resume,
		headless:   opts.Headless,
		shotDir:    opts.ScreenshotDir,
		shotFormat: opts.ScreenshotFormat,
		width:      opts.Width,
		height:     opts.Height,
		dt:         1 / float64(ebiten.TPS()),
	}
	start := opts.StartIndex
	if g.resume != nil {
		start = g.resume.Load(items)
	}
	if err := g.build(ctx, items, start); err != nil {
		return nil, err
	}
	if opts.ShowHUD && !opts.Headless {
		g.hud = newHUD()
	}
	return g, nil
}

// build replaces the session with one over items, starting at start.
func (g *Game) build(ctx context.Context, items []Item, start int) error {
	orch, err := NewOrchestrator(Options{
		Items:          items,
		Config:         &g.cfg,
		StartIndex:     start,
		Logger:         g.log,
		Opener:         g.opts.Opener,
		OnDetailPanel:  g.detailChanged,
		OnCurrentIndex: func(i int) { g.currentChanged(items, i) },
	})
	if err != nil {
		return fmt.Errorf("build session: %w", err)
	}
	renderer, err := NewRenderer(g.cfg, len(items))
	if err != nil {
		return fmt.Errorf("build session: %w", err)
	}
	if !g.headless {
		covers, err := LoadCoverImages(ctx, g.opts.Images, items, g.log)
		if err != nil {
			return fmt.Errorf("build session: %w", err)
		}
		faces := make([]FaceTextures, len(items))
		for i, it := range items {
			faces[i] = g.textures.Build(it, orch.PanelParams(i), covers[i])
		}
		renderer.SetFaces(faces)
	}

	if g.renderer != nil {
		g.renderer.SetFaces(nil)
	}
	g.orch = orch
	g.renderer = renderer
	g.input = NewInputAdapter(g.cfg.Render, g.width, g.height)
	g.quads = g.quads[:0]
	return nil
}

// Reload swaps in a new item list, keeping the current index when it still
// exists. On failure the running session is left untouched.
func (g *Game) Reload(ctx context.Context, items []Item) error {
	start := min(g.orch.State().CurrentIndex, len(items)-1)
	if err := g.build(ctx, items, start); err != nil {
		g.log.Warn("reload rejected", zap.Error(err))
		return err
	}
	g.log.Info("session rebuilt", zap.Int("items", len(items)), zap.String("session", g.orch.Session()))
	return nil
}

// WatchItems makes the game rebuild its session with every list received on
// ch, typically an ItemsWatcher's Updates.
func (g *Game) WatchItems(ch <-chan []Item) { g.reloads = ch }

func (g *Game) currentChanged(items []Item, i int) {
	if g.resume == nil {
		return
	}
	if err := g.resume.Save(items, i); err != nil {
		g.log.Warn("save resume record", zap.Error(err))
	}
}

func (g *Game) detailChanged(shown bool) {
	g.log.Debug("detail panel", zap.Bool("shown", shown))
}

// Orchestrator returns the running session.
func (g *Game) Orchestrator() *Orchestrator { return g.orch }

// Stats returns the session and renderer counters.
func (g *Game) Stats() Stats { return g.orch.Stats().withRender(g.renderer.stats) }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.reloads != nil {
		select {
		case items := <-g.reloads:
			// Errors are logged by Reload; the old session keeps running.
			_ = g.Reload(context.Background(), items)
		default:
		}
	}
	if g.runner != nil {
		g.runner.step(g)
	}
	if !g.processInjected() && !g.headless {
		g.input.Apply(g.orch, g.input.Poll(), g.quads)
	}

	g.orch.Update(g.dt)
	g.renderer.Prepare(g.orch, g.width, g.height)
	g.quads = append(g.quads[:0], g.renderer.Quads()...)
	debugLog(g.log, g.Stats())

	if g.hud != nil {
		g.hud.update(g.dt)
	}
	if g.opts.ExitOnScriptEnd && g.runner != nil && g.runner.Done() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.orch)
	ns := g.orch.State()
	if ns.DetailShown {
		g.drawDetail(screen, ns)
	}
	if g.hud != nil {
		g.hud.draw(screen, ns, g.Stats())
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The game renders at the outside size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.input.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Close releases every GPU resource held by the game.
func (g *Game) Close() {
	g.renderer.SetFaces(nil)
	if g.hud != nil {
		g.hud.dispose()
	}
}

// RunHeadless steps the game until its replay script is done, without a
// window. It fails when the script does not finish within maxTicks or any
// expectation failed.
func (g *Game) RunHeadless(ctx context.Context, maxTicks int) error {
	if g.runner == nil {
		return errors.New("run headless: no script")
	}
	for tick := 0; !g.runner.Done(); tick++ {
		if tick >= maxTicks {
			return fmt.Errorf("run headless: script unfinished after %d ticks", maxTicks)
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run headless: %w", err)
		}
		if err := g.Update(); err != nil {
			return fmt.Errorf("run headless: %w", err)
		}
	}
	if f := g.runner.Failures(); len(f) > 0 {
		return fmt.Errorf("%w: %s", ErrScriptFailed, strings.Join(f, "; "))
	}
	return nil
}

// RunConfig holds the window settings for Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
}

// Run opens a window and runs g until it is closed or the replay script
// ends with ExitOnScriptEnd set.
func Run(g *Game, cfg RunConfig) error {
	defer g.Close()
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = g.width, g.height
	}
	if cfg.Title == "" {
		cfg.Title = "Flag Gallery"
	}
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Fullscreen)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

var (
	overlayBackground = color.RGBA{0, 0, 0, 200}
	overlayBorder     = color.RGBA{255, 255, 255, 90}
	overlayMuted      = color.RGBA{170, 170, 170, 255}
)

// Detail overlay geometry, in screen pixels.
const (
	overlayMargin   = 24.0
	overlayPad      = 16.0
	overlayLine     = 16.0
	overlayMaxLines = 4
)

// drawDetail draws the detail panel of the item the session is resting on.
func (g *Game) drawDetail(screen *ebiten.Image, ns NavigationState) {
	i := ns.CurrentIndex
	if ns.State == StateFocused {
		i = ns.SelectedIndex
	}
	items := g.orch.Items()
	if i < 0 || i >= len(items) {
		return
	}
	it := items[i]

	w := min(float64(g.width)-2*overlayMargin, 560)
	measure := g.textures.measure(1)
	desc := TruncateLines(WrapText(it.Description, w-2*overlayPad, measure), overlayMaxLines)

	lines := 3 + len(desc) // title, tags, hints
	h := 2*overlayPad + float64(lines)*overlayLine + overlayLine/2
	x := overlayMargin
	y := float64(g.height) - overlayMargin - h

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), overlayBackground, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, overlayBorder, false)

	tx, ty := x+overlayPad, y+overlayPad
	g.textures.drawText(screen, strings.ToUpper(it.Title), tx, ty, 1, color.White)
	ty += overlayLine * 1.5
	for _, line := range desc {
		g.textures.drawText(screen, line, tx, ty, 1, color.White)
		ty += overlayLine
	}
	g.textures.drawText(screen, strings.Join(it.Tags, " / "), tx, ty, 1, overlayMuted)
	ty += overlayLine

	hints := []string{"ESC close"}
	if link := it.Link(); link != "" {
		hints = append([]string{"ENTER open " + link}, hints...)
	}
	g.textures.drawText(screen, strings.Join(hints, "   "), tx, ty, 1, overlayMuted)
}
