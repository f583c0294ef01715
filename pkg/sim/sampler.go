package sim

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"webscada.dev/scada-core-service/pkg/models"
)

const (
	PatternRandom = "random"
	PatternSine   = "sine"
	PatternSquare = "square"
	PatternRamp   = "ramp"
	PatternStep   = "step"

	// DefaultToggleQuantum is the wall clock step of digital and step
	// patterns, independent of the sampling tick rate.
	DefaultToggleQuantum = 3 * time.Second

	sineWavePeriod = 60 * time.Second
	rampPeriod     = 60 * time.Second
	stepLevels     = 5
)

// GenContext is what a pattern generator sees for one sample.
type GenContext struct {
	Tag     *models.Tag
	Prev    *float64 // nil when the tag has no previous sample
	Now     time.Time
	Rand    *rand.Rand
	Quantum time.Duration
}

// Generator produces one raw value for a tag. The sampler clamps
// analog results into [Min, Max] afterwards; square output is the
// digital state itself and passes through unclamped.
type Generator func(ctx *GenContext) float64

// Sampler produces simulated values per tag. The per-tag last-value
// state lives here and nowhere else.
type Sampler struct {
	mu       sync.Mutex
	last     map[string]float64
	registry map[string]Generator
	rnd      *rand.Rand
	quantum  time.Duration
}

func NewSampler() *Sampler {
	s := &Sampler{
		last:     make(map[string]float64),
		registry: make(map[string]Generator),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		quantum:  DefaultToggleQuantum,
	}
	s.Register(PatternRandom, RandomWalk)
	s.Register(PatternSine, SineWave)
	s.Register(PatternSquare, SquareToggle)
	s.Register(PatternRamp, Ramp)
	s.Register(PatternStep, Step)
	return s
}

// Register binds a pattern name to a generator. Adding a pattern needs
// no change to any caller.
func (s *Sampler) Register(pattern string, gen Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[pattern] = gen
}

// Sample produces exactly one value for the tag.
func (s *Sampler) Sample(tag *models.Tag, now time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern := resolvePattern(tag)

	gen, exists := s.registry[pattern]
	if !exists {
		return 0, fmt.Errorf("unknown simulation pattern %q for tag %s", pattern, tag.ID)
	}

	ctx := &GenContext{
		Tag:     tag,
		Now:     now,
		Rand:    s.rnd,
		Quantum: s.quantum,
	}
	if prev, ok := s.last[tag.ID]; ok {
		p := prev
		ctx.Prev = &p
	}

	value := gen(ctx)
	if pattern != PatternSquare {
		// digital toggles emit states directly; a zero-value range
		// would clamp every 1 back to 0
		value = clamp(value, tag.Min, tag.Max)
	}
	s.last[tag.ID] = value
	return value, nil
}

// ValidateTag checks that the tag's pattern, explicit or defaulted, is
// registered, so a misconfigured device is refused at start instead of
// failing tick by tick.
func (s *Sampler) ValidateTag(tag *models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern := resolvePattern(tag)
	if _, exists := s.registry[pattern]; !exists {
		return fmt.Errorf("unknown simulation pattern %q for tag %s", pattern, tag.ID)
	}
	return nil
}

func resolvePattern(tag *models.Tag) string {
	if tag.Pattern != "" {
		return tag.Pattern
	}
	if tag.Type == models.TagTypeDigital {
		return PatternSquare
	}
	return PatternRandom
}

// Forget drops the remembered last value, e.g. when collection restarts.
func (s *Sampler) Forget(tagID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, tagID)
}

func clamp(v, min, max float64) float64 {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// RandomWalk steps from the previous value within the noise band.
func RandomWalk(ctx *GenContext) float64 {
	tag := ctx.Tag
	if ctx.Prev == nil {
		return tag.Min + ctx.Rand.Float64()*(tag.Max-tag.Min)
	}
	delta := (ctx.Rand.Float64()*2 - 1) * tag.Noise * 2
	return *ctx.Prev + delta
}

// SineWave oscillates over the tag range with noise jitter.
func SineWave(ctx *GenContext) float64 {
	tag := ctx.Tag
	mid := (tag.Min + tag.Max) / 2
	amp := (tag.Max - tag.Min) / 2
	phase := 2 * math.Pi * float64(ctx.Now.UnixMilli()) / float64(sineWavePeriod.Milliseconds())
	jitter := (ctx.Rand.Float64()*2 - 1) * tag.Noise
	return mid + amp*math.Sin(phase) + jitter
}

// SquareToggle cycles the configured 0/1 state pattern, advancing one
// step every quantum of wall clock regardless of sampling tick rate.
func SquareToggle(ctx *GenContext) float64 {
	states := parseStatePattern(ctx.Tag.StatePattern)
	step := ctx.Now.UnixMilli() / ctx.Quantum.Milliseconds()
	return states[int(step)%len(states)]
}

// Ramp sweeps linearly from min to max and wraps around.
func Ramp(ctx *GenContext) float64 {
	tag := ctx.Tag
	period := rampPeriod.Milliseconds()
	phase := float64(ctx.Now.UnixMilli()%period) / float64(period)
	return tag.Min + (tag.Max-tag.Min)*phase
}

// Step moves through a fixed number of discrete levels, one per quantum.
func Step(ctx *GenContext) float64 {
	tag := ctx.Tag
	step := ctx.Now.UnixMilli() / ctx.Quantum.Milliseconds()
	level := int(step) % stepLevels
	return tag.Min + (tag.Max-tag.Min)*float64(level)/float64(stepLevels-1)
}

func parseStatePattern(raw string) []float64 {
	if raw == "" {
		return []float64{0, 1}
	}
	parts := strings.Split(raw, ",")
	states := make([]float64, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "1" {
			states = append(states, 1)
		} else {
			states = append(states, 0)
		}
	}
	if len(states) == 0 {
		return []float64{0, 1}
	}
	return states
}
