package flaggallery

import "math"

// PanelParams are the per-item constants seeded once when a panel is
// created, so that items do not wave in lockstep.
type PanelParams struct {
	Index       int
	PhaseOffset float64 // radians
	Frequency   float64 // wave speed multiplier
	Amplitude   float64 // base wave height in world units
	Gradient    [2]Color
}

// NewPanelParams derives the wave parameters of item index from the layout
// hash and picks its gradient from the palette.
func NewPanelParams(l Layout, cfg PanelConfig, index int) PanelParams {
	seed := l.Seed(index, 0)
	p := PanelParams{
		Index:       index,
		PhaseOffset: l.Hash(seed, 1) * math.Pi * 2,
		Frequency:   cfg.FrequencyMin + l.Hash(seed, 2)*cfg.FrequencyRange,
		Amplitude:   cfg.AmplitudeMin + l.Hash(seed, 3)*cfg.AmplitudeRange,
		Gradient:    [2]Color{ColorWhite, ColorWhite},
	}
	if n := len(cfg.Palette); n > 0 {
		pair := cfg.Palette[index%n]
		for i, s := range pair {
			if c, err := ParseHexColor(s); err == nil {
				p.Gradient[i] = c
			}
		}
	}
	return p
}

// PanelInputs are the control inputs the orchestrator hands a panel each
// tick. Panels never see NavigationState directly.
type PanelInputs struct {
	Time       float64 // shared clock, seconds
	Delta      float64 // clamped tick length, seconds
	Stretched  bool
	NearCamera bool
	Hover      bool
}

// WaveParams describe the cloth displacement of a panel surface.
type WaveParams struct {
	Amplitude float64
	Frequency float64
	Phase     float64
	Time      float64
}

// Displacement returns the Z offset of the surface point at local (x, y):
// two layered sines, one along each axis.
func (w WaveParams) Displacement(x, y float64) float64 {
	d := math.Sin(x*2+w.Time*w.Frequency+w.Phase) * w.Amplitude * 1.2
	d += math.Sin(y*3+w.Time*w.Frequency*0.8) * w.Amplitude * 0.9
	return d
}

// Shade returns the brightness multiplier for a point displaced by d.
func (w WaveParams) Shade(d float64) float64 {
	return d*0.3 + 0.8
}

// PanelFrame is a panel's instantaneous output: its local transform relative
// to the item anchor and the parameters needed to shade its surface.
type PanelFrame struct {
	Rotation      Vec3 // Euler angles in radians, XYZ order
	Scale         Vec3
	Width, Height float64
	Face          Face
	FlipProgress  float64
	StretchFactor float64 // eased stretch progress
	Emissive      float64
	Wave          WaveParams
}

// FaceFor returns the face shown at flip progress flip: front strictly below
// cutoff, back from cutoff on. There is no cross-fade.
func FaceFor(flip, cutoff float64) Face {
	if flip < cutoff {
		return FaceFront
	}
	return FaceBack
}

// Panel owns the local animation state of one item. It reads only the
// inputs it is given and writes only its own fields.
type Panel struct {
	params   PanelParams
	cfg      PanelConfig
	stretch  Spring
	emissive Spring
	flip     float64
	waveTime float64
	frame    PanelFrame
}

// NewPanel creates a resting panel (front face, unstretched).
func NewPanel(params PanelParams, cfg PanelConfig) *Panel {
	p := &Panel{
		params:   params,
		cfg:      cfg,
		stretch:  Spring{Stiffness: cfg.StretchStiffness, Damping: cfg.StretchDamping},
		emissive: Spring{Stiffness: cfg.EmissiveStiffness, Damping: cfg.EmissiveDamping},
	}
	p.frame = p.compose(0, false)
	return p
}

// Params returns the seeded constants of the panel.
func (p *Panel) Params() PanelParams { return p.params }

// Frame returns the output of the last Update.
func (p *Panel) Frame() PanelFrame { return p.frame }

// StretchProgress returns the raw (uneased) stretch spring value.
func (p *Panel) StretchProgress() float64 { return p.stretch.Value }

// FlipProgress returns the current flip progress in [0, 1].
func (p *Panel) FlipProgress() float64 { return p.flip }

// Update advances the panel by one tick and returns its new frame.
func (p *Panel) Update(in PanelInputs) PanelFrame {
	dt := in.Delta

	// Waves freeze while the panel is far from the camera.
	if in.NearCamera {
		p.waveTime = in.Time
	}

	target := 0.0
	speed := p.cfg.FlipSpeedOut
	if in.Stretched {
		target = 1
		speed = p.cfg.FlipSpeedIn
	}
	p.stretch.Step(target, dt)
	p.flip = clamp01(Approach(p.flip, target, speed, dt))

	glow := 0.0
	if in.Hover {
		glow = p.cfg.HoverEmissive
	}
	p.emissive.Step(glow, dt)

	p.frame = p.compose(in.Time, in.Stretched)
	return p.frame
}

// compose derives the transform and shading from the current spring values.
func (p *Panel) compose(t float64, stretched bool) PanelFrame {
	idx := float64(p.params.Index)
	stretch := p.stretch.Value
	fold := math.Sin(p.flip * math.Pi)

	intensity := 1.0
	targetX, targetY := 1.0, 1.0
	if stretched {
		intensity = 1.5
		targetX, targetY = p.cfg.StretchScaleX, p.cfg.StretchScaleY
	}

	flutter := math.Sin(t*5) * 0.01 * fold
	idle := (1 - fold*0.7) * intensity * math.Sin(t*0.6+idx*0.5) * 0.015
	breathing := math.Sin(t*2) * 0.02 * stretch

	rot := Vec3{
		X: math.Sin(t*0.3+idx) * 0.008 * (1 - fold*0.7) * intensity,
		Y: EaseInOutCubic(p.flip)*math.Pi + flutter + idle,
		Z: math.Sin(t*1.2) * 0.008 * stretch,
	}
	scale := Vec3{
		X: (stretch*(targetX-1)+1)*(1-fold*0.35) + breathing,
		Y: (stretch*(targetY-1)+1)*(1+fold*0.12) + breathing*0.5,
		Z: 1 + fold*0.06,
	}

	return PanelFrame{
		Rotation:      rot,
		Scale:         scale,
		Width:         p.cfg.Width,
		Height:        p.cfg.Height,
		Face:          FaceFor(p.flip, p.cfg.FaceCutoff),
		FlipProgress:  p.flip,
		StretchFactor: EaseInOutCubic(clamp01(stretch)),
		Emissive:      p.emissive.Value,
		Wave: WaveParams{
			Amplitude: p.params.Amplitude * (1 - math.Abs(fold)*0.5),
			Frequency: p.params.Frequency,
			Phase:     p.params.PhaseOffset,
			Time:      p.waveTime,
		},
	}
}
