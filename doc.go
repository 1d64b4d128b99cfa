// Package flaggallery is a 3D portfolio gallery for [Ebitengine]: a list of
// showcase items is presented as cloth-like flag panels that the camera
// travels between.
//
// The session has two presentation modes. In linear mode the items line up
// along a deep Z path and the camera arcs from one to the next as the user
// scrolls. Scrolling past the last item enters the gallery, where every item
// is scattered in a volume around the viewer; selecting one zooms in on it
// (focus) and Escape or a background click returns.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	g, err := flaggallery.NewGame(ctx, flaggallery.GameOptions{ShowHUD: true})
//	if err != nil {
//		return err
//	}
//	return flaggallery.Run(g, flaggallery.RunConfig{Title: "Gallery"})
//
// # Orchestrator
//
// [Orchestrator] is the state machine at the core. It is purely a function
// of the commands it receives and the deltas passed to
// [Orchestrator.Update], so it runs without a window:
//
//	o, _ := flaggallery.NewOrchestrator(flaggallery.Options{Items: items})
//	o.Execute(flaggallery.NavigateForward())
//	for o.State().Transitioning {
//		o.Update(1.0 / 60)
//	}
//
// Only one transition runs at a time. Commands received while a transition
// is in flight are dropped, never queued. Each tick the orchestrator
// exposes an [ItemFrame] per item: position, scale and rotation of the
// item anchor plus the animated [PanelFrame] (wave, stretch, flip, glow).
//
// # Layout
//
// Positions come from a seeded hash, so every run of the same item count
// produces the same layout. [LinearPath] and [ScatteredGallery] give the
// home positions under the default tuning; [Layout] does so for any
// [LayoutConfig].
//
// # Input
//
// [InputAdapter] turns Ebitengine input into commands: wheel and arrow keys
// scroll, Escape dismisses, pointer clicks select the panel under the
// cursor and touches at the screen edges act as previous/next. Scripts
// loaded with [LoadTestScript] replay the same commands for automated runs;
// see [TestRunner].
//
// # Configuration
//
// Every constant of the choreography lives in [Config]. [DefaultConfig]
// carries the stock tuning and [LoadConfig] overlays a YAML file on it.
//
// [Ebitengine]: https://ebitengine.org
package flaggallery
