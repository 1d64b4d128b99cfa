package flaggallery

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned (wrapped) by Config.Validate and LoadConfig.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable of a gallery session. Start from DefaultConfig
// and override fields, or overlay a YAML file with LoadConfig.
type Config struct {
	Layout      LayoutConfig     `yaml:"layout"`
	Navigation  NavigationConfig `yaml:"navigation"`
	Camera      CameraConfig     `yaml:"camera"`
	Panel       PanelConfig      `yaml:"panel"`
	Transitions TransitionConfig `yaml:"transitions"`
	Render      RenderConfig     `yaml:"render"`
}

// LayoutConfig parameterizes the seeded layout generator.
type LayoutConfig struct {
	// HashScale multiplies sin(seed+offset) before taking the fraction.
	HashScale float64 `yaml:"hashScale"`
	// SeedStride separates the seed ranges of consecutive items.
	SeedStride float64 `yaml:"seedStride"`

	// LinearSpread is the full width of the jitter box along each axis.
	LinearSpread Vec3 `yaml:"linearSpread"`
	// LinearStep is the Z distance between consecutive items on the path.
	LinearStep float64 `yaml:"linearStep"`

	GallerySpread Vec3    `yaml:"gallerySpread"`
	GalleryCenter Vec3    `yaml:"galleryCenter"`
	MinSeparation float64 `yaml:"minSeparation"`
	MaxAttempts   int     `yaml:"maxAttempts"`
}

// NavigationConfig controls input thresholds and dwell timing.
type NavigationConfig struct {
	ScrollThreshold    float64 `yaml:"scrollThreshold"`    // accumulated wheel delta that triggers a step
	StepDelta          float64 `yaml:"stepDelta"`          // delta synthesized by Next/Prev
	DwellThreshold     float64 `yaml:"dwellThreshold"`     // seconds before the detail panel shows
	FocusDwellPrime    float64 `yaml:"focusDwellPrime"`    // dwell value set when a focus completes
	MaxFrameDelta      float64 `yaml:"maxFrameDelta"`      // clamp applied to physics dt
	NearCameraDistance float64 `yaml:"nearCameraDistance"` // |dz| below which waves animate
}

// CameraConfig controls the spring camera and projection.
type CameraConfig struct {
	Stiffness    float64 `yaml:"stiffness"`
	Damping      float64 `yaml:"damping"`
	StartOffset  Vec3    `yaml:"startOffset"`  // initial position relative to the first item
	ViewOffset   Vec3    `yaml:"viewOffset"`   // resting target relative to the current item
	FOV          float64 `yaml:"fov"`          // vertical field of view in degrees
	Near         float64 `yaml:"near"`
	GalleryLook  Vec3    `yaml:"galleryLook"`  // look target while in the gallery
	Parallax     float64 `yaml:"parallax"`     // pointer parallax strength
	GalleryBoost float64 `yaml:"galleryBoost"` // parallax multiplier in the gallery
	FocusDamp    float64 `yaml:"focusDamp"`    // parallax multiplier while focused
}

// PanelConfig controls per-item panel geometry and motion.
type PanelConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	StretchScaleX float64 `yaml:"stretchScaleX"`
	StretchScaleY float64 `yaml:"stretchScaleY"`
	Segments      int     `yaml:"segments"`

	StretchStiffness float64 `yaml:"stretchStiffness"`
	StretchDamping   float64 `yaml:"stretchDamping"`
	FlipSpeedIn      float64 `yaml:"flipSpeedIn"`
	FlipSpeedOut     float64 `yaml:"flipSpeedOut"`
	FaceCutoff       float64 `yaml:"faceCutoff"`

	FrequencyMin   float64 `yaml:"frequencyMin"`
	FrequencyRange float64 `yaml:"frequencyRange"`
	AmplitudeMin   float64 `yaml:"amplitudeMin"`
	AmplitudeRange float64 `yaml:"amplitudeRange"`

	HoverEmissive     float64 `yaml:"hoverEmissive"`
	EmissiveStiffness float64 `yaml:"emissiveStiffness"`
	EmissiveDamping   float64 `yaml:"emissiveDamping"`

	// Palette holds gradient pairs, assigned to items by index modulo length.
	Palette [][2]string `yaml:"palette"`
}

// TransitionConfig holds durations (seconds) and waypoints of every
// choreographed transition.
type TransitionConfig struct {
	ArcOffset       Vec3    `yaml:"arcOffset"` // side waypoint relative to each linear item
	ArcStage        float64 `yaml:"arcStage"`
	ArcOverlap      float64 `yaml:"arcOverlap"`
	ArcLookDuration float64 `yaml:"arcLookDuration"`

	EntryWaypoint   Vec3    `yaml:"entryWaypoint"`
	EntryWaypointIn float64 `yaml:"entryWaypointIn"`
	GalleryView     Vec3    `yaml:"galleryView"`
	GalleryViewIn   float64 `yaml:"galleryViewIn"`
	ScatterDuration float64 `yaml:"scatterDuration"`
	ScatterBase     float64 `yaml:"scatterBase"`
	ScatterWave     float64 `yaml:"scatterWave"`
	ScatterWaveFreq float64 `yaml:"scatterWaveFreq"`
	ScatterStep     float64 `yaml:"scatterStep"`

	ExitDuration float64 `yaml:"exitDuration"`

	FocusDuration float64 `yaml:"focusDuration"`
	FocusOffset   Vec3    `yaml:"focusOffset"`
	FocusScale    float64 `yaml:"focusScale"`

	ReturnDuration  float64 `yaml:"returnDuration"`
	ReturnStagger   float64 `yaml:"returnStagger"`
	ReturnView      Vec3    `yaml:"returnView"`
	ReturnViewIn    float64 `yaml:"returnViewIn"`
	ReturnViewDelay float64 `yaml:"returnViewDelay"`

	HoverDuration float64 `yaml:"hoverDuration"`
	HoverScale    float64 `yaml:"hoverScale"`
	HoverLift     float64 `yaml:"hoverLift"`
}

// RenderConfig controls the Ebitengine renderer.
type RenderConfig struct {
	Background    string  `yaml:"background"`
	FogColor      string  `yaml:"fogColor"`
	FogNear       float64 `yaml:"fogNear"`
	FogFar        float64 `yaml:"fogFar"`
	TextureWidth  int     `yaml:"textureWidth"`
	TextureHeight int     `yaml:"textureHeight"`
	TapZone       float64 `yaml:"tapZone"`    // fraction of the screen width used by each tap zone
	WheelScale    float64 `yaml:"wheelScale"` // delta per wheel notch
}

// DefaultConfig returns the stock tuning of the gallery.
func DefaultConfig() Config {
	return Config{
		Layout: LayoutConfig{
			HashScale:     10000,
			SeedStride:    1000,
			LinearSpread:  Vec3{8, 6, 4},
			LinearStep:    -40,
			GallerySpread: Vec3{48, 28, 16},
			GalleryCenter: Vec3{0, 0, -120},
			MinSeparation: 12,
			MaxAttempts:   30,
		},
		Navigation: NavigationConfig{
			ScrollThreshold:    100,
			StepDelta:          120,
			DwellThreshold:     0.8,
			FocusDwellPrime:    1.0,
			MaxFrameDelta:      0.05,
			NearCameraDistance: 60,
		},
		Camera: CameraConfig{
			Stiffness:    12,
			Damping:      0.92,
			StartOffset:  Vec3{0, 0, 12},
			ViewOffset:   Vec3{0, 0, 8},
			FOV:          60,
			Near:         0.1,
			GalleryLook:  Vec3{0, 0, -120},
			Parallax:     0.3,
			GalleryBoost: 5,
			FocusDamp:    0.5,
		},
		Panel: PanelConfig{
			Width:             4,
			Height:            2.5,
			StretchScaleX:     1.5,
			StretchScaleY:     1.12,
			Segments:          16,
			StretchStiffness:  2,
			StretchDamping:    0.95,
			FlipSpeedIn:       0.4,
			FlipSpeedOut:      0.25,
			FaceCutoff:        0.5,
			FrequencyMin:      1.2,
			FrequencyRange:    0.8,
			AmplitudeMin:      0.25,
			AmplitudeRange:    0.15,
			HoverEmissive:     0.25,
			EmissiveStiffness: 40,
			EmissiveDamping:   0.8,
			Palette: [][2]string{
				{"#000000", "#ffffff"},
				{"#4444ff", "#8800ff"},
				{"#00ff88", "#00ccaa"},
				{"#ffaa00", "#ff6600"},
				{"#ff0088", "#cc0066"},
				{"#00aaff", "#0088cc"},
				{"#88ff00", "#66cc00"},
				{"#ff00ff", "#cc00cc"},
				{"#00ffff", "#00cccc"},
				{"#ffff00", "#cccc00"},
			},
		},
		Transitions: TransitionConfig{
			ArcOffset:       Vec3{85, 15, 75},
			ArcStage:        1.8,
			ArcOverlap:      1.5,
			ArcLookDuration: 3.8,

			EntryWaypoint:   Vec3{-8, 5, -90},
			EntryWaypointIn: 0.8,
			GalleryView:     Vec3{0, 0, -75},
			GalleryViewIn:   1.2,
			ScatterDuration: 1.5,
			ScatterBase:     0.6,
			ScatterWave:     0.15,
			ScatterWaveFreq: 0.5,
			ScatterStep:     0.03,

			ExitDuration: 1.2,

			FocusDuration: 0.8,
			FocusOffset:   Vec3{0, 0, 10},
			FocusScale:    3,

			ReturnDuration:  0.8,
			ReturnStagger:   0.05,
			ReturnView:      Vec3{0, 0, -70},
			ReturnViewIn:    1.0,
			ReturnViewDelay: 0.2,

			HoverDuration: 0.4,
			HoverScale:    1.2,
			HoverLift:     2,
		},
		Render: RenderConfig{
			Background:    "#000000",
			FogColor:      "#080808",
			FogNear:       15,
			FogFar:        100,
			TextureWidth:  512,
			TextureHeight: 256,
			TapZone:       0.25,
			WheelScale:    120,
		},
	}
}

// LoadConfig reads a YAML file and overlays it on DefaultConfig. Keys that
// are absent keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first out-of-range value, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"layout.hashScale", c.Layout.HashScale > 0},
		{"layout.minSeparation", c.Layout.MinSeparation >= 0},
		{"layout.maxAttempts", c.Layout.MaxAttempts >= 1},
		{"navigation.scrollThreshold", c.Navigation.ScrollThreshold > 0},
		{"navigation.stepDelta", c.Navigation.StepDelta > c.Navigation.ScrollThreshold},
		{"navigation.dwellThreshold", c.Navigation.DwellThreshold > 0},
		{"navigation.maxFrameDelta", c.Navigation.MaxFrameDelta > 0},
		{"camera.stiffness", c.Camera.Stiffness > 0},
		{"camera.damping", c.Camera.Damping > 0 && c.Camera.Damping <= 1},
		{"camera.fov", c.Camera.FOV > 0 && c.Camera.FOV < 180},
		{"camera.near", c.Camera.Near > 0},
		{"panel.segments", c.Panel.Segments >= 1 && c.Panel.Segments <= 128},
		{"panel.width", c.Panel.Width > 0 && c.Panel.Height > 0},
		{"panel.stretchDamping", c.Panel.StretchDamping > 0 && c.Panel.StretchDamping <= 1},
		{"panel.faceCutoff", c.Panel.FaceCutoff > 0 && c.Panel.FaceCutoff < 1},
		{"panel.palette", len(c.Panel.Palette) > 0},
		{"transitions.arcStage", c.Transitions.ArcStage > 0 && c.Transitions.ArcOverlap < c.Transitions.ArcStage},
		{"transitions.scatterDuration", c.Transitions.ScatterDuration > 0},
		{"transitions.focusDuration", c.Transitions.FocusDuration > 0},
		{"transitions.returnDuration", c.Transitions.ReturnDuration > 0},
		{"transitions.hoverDuration", c.Transitions.HoverDuration > 0},
		{"render.fog", c.Render.FogFar > c.Render.FogNear},
		{"render.texture", c.Render.TextureWidth > 0 && c.Render.TextureHeight > 0},
		{"render.tapZone", c.Render.TapZone >= 0 && c.Render.TapZone <= 0.5},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s out of range", ErrInvalidConfig, chk.name)
		}
	}
	for i, pair := range c.Panel.Palette {
		for _, s := range pair {
			if _, err := ParseHexColor(s); err != nil {
				return fmt.Errorf("%w: panel.palette[%d]: %v", ErrInvalidConfig, i, err)
			}
		}
	}
	for _, s := range []string{c.Render.Background, c.Render.FogColor} {
		if _, err := ParseHexColor(s); err != nil {
			return fmt.Errorf("%w: render: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
