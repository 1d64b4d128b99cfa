package flaggallery

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newHeadlessGame(t *testing.T, opts GameOptions) *Game {
	t.Helper()
	opts.Headless = true
	g, err := NewGame(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

func runScript(t *testing.T, g *Game, script string) error {
	t.Helper()
	r, err := LoadTestScript([]byte(script))
	if err != nil {
		t.Fatalf("LoadTestScript: %v", err)
	}
	g.SetTestRunner(r)
	return g.RunHeadless(context.Background(), 5000)
}

func TestRunHeadlessScript(t *testing.T) {
	g := newHeadlessGame(t, GameOptions{})
	err := runScript(t, g, `steps:
  - action: forward
  - action: settle
  - action: expect
    expect: {state: LinearScroll, current: 1}
  - action: next
  - action: settle
  - action: prev
  - action: settle
  - action: expect
    label: back at second
    expect: {current: 1, mode: linear}
`)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
}

func TestRunHeadlessReportsFailures(t *testing.T) {
	g := newHeadlessGame(t, GameOptions{})
	err := runScript(t, g, `steps:
  - action: expect
    label: wrong index
    expect: {current: 5}
`)
	if !errors.Is(err, ErrScriptFailed) {
		t.Fatalf("err = %v, want ErrScriptFailed", err)
	}
	if !strings.Contains(err.Error(), "wrong index: current = 0, want 5") {
		t.Errorf("err = %v, want the failed expectation", err)
	}
}

func TestRunHeadlessErrors(t *testing.T) {
	g := newHeadlessGame(t, GameOptions{})
	if err := g.RunHeadless(context.Background(), 10); err == nil {
		t.Error("RunHeadless without a script succeeded")
	}
	r, err := LoadTestScript([]byte("steps:\n  - action: wait\n    frames: 100\n"))
	if err != nil {
		t.Fatal(err)
	}
	g.SetTestRunner(r)
	if err := g.RunHeadless(context.Background(), 10); err == nil {
		t.Error("RunHeadless finished a 100 frame wait in 10 ticks")
	}
}

func TestGameReload(t *testing.T) {
	g := newHeadlessGame(t, GameOptions{StartIndex: 2})
	items := DefaultItems()[:4]
	if err := g.Reload(context.Background(), items); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := g.Orchestrator().Len(); got != 4 {
		t.Errorf("Len = %d, want 4", got)
	}
	if got := g.Orchestrator().State().CurrentIndex; got != 2 {
		t.Errorf("current = %d, want 2", got)
	}

	before := g.Orchestrator()
	if err := g.Reload(context.Background(), nil); err == nil {
		t.Error("Reload accepted an empty list")
	}
	if g.Orchestrator() != before {
		t.Error("failed reload replaced the session")
	}
}

func TestGameWatchItems(t *testing.T) {
	g := newHeadlessGame(t, GameOptions{})
	ch := make(chan []Item, 1)
	g.WatchItems(ch)
	ch <- DefaultItems()[:3]
	if err := g.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := g.Orchestrator().Len(); got != 3 {
		t.Errorf("Len after reload = %d, want 3", got)
	}
}

func TestGameRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera.FOV = 0
	if _, err := NewGame(context.Background(), GameOptions{Config: &cfg, Headless: true}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}
