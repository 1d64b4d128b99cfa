package flaggallery

import (
	"time"

	"go.uber.org/zap"
)

// navStats counts orchestrator activity. Ignored commands are not counted.
type navStats struct {
	ticks       uint64
	commands    uint64
	transitions uint64
}

// debugStats holds per-frame timing and draw metrics of the renderer.
type debugStats struct {
	projectTime   time.Duration
	sortTime      time.Duration
	submitTime    time.Duration
	panelCount    int
	culledCount   int
	triangleCount int
}

// Stats is a snapshot of session and renderer counters.
type Stats struct {
	Ticks       uint64
	Commands    uint64 // accepted commands
	Transitions uint64
	Panels      int // panels drawn last frame
	Culled      int // panels behind the near plane
	Triangles   int
	Project     time.Duration
	Sort        time.Duration
	Submit      time.Duration
}

// Stats returns the orchestrator counters.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		Ticks:       o.stats.ticks,
		Commands:    o.stats.commands,
		Transitions: o.stats.transitions,
	}
}

// withRender merges renderer metrics into s.
func (s Stats) withRender(d debugStats) Stats {
	s.Panels = d.panelCount
	s.Culled = d.culledCount
	s.Triangles = d.triangleCount
	s.Project = d.projectTime
	s.Sort = d.sortTime
	s.Submit = d.submitTime
	return s
}

// debugLogEvery is the number of ticks between two debug stat lines.
const debugLogEvery = 300

// debugLog writes the stats at Debug level every debugLogEvery ticks.
func debugLog(log *zap.Logger, s Stats) {
	if s.Ticks == 0 || s.Ticks%debugLogEvery != 0 {
		return
	}
	if ce := log.Check(zap.DebugLevel, "frame stats"); ce != nil {
		ce.Write(
			zap.Uint64("ticks", s.Ticks),
			zap.Uint64("commands", s.Commands),
			zap.Uint64("transitions", s.Transitions),
			zap.Int("panels", s.Panels),
			zap.Int("culled", s.Culled),
			zap.Int("triangles", s.Triangles),
			zap.Duration("project", s.Project),
			zap.Duration("sort", s.Sort),
			zap.Duration("submit", s.Submit),
		)
	}
}
