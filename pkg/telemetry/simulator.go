// Package telemetry generates simulated flight data for the cockpit
// instruments. The simulator walks through a canned flight profile
// (taxi through landing) and jitters each reading so the panel has live
// values to render without a real avionics feed.
package telemetry

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Phase is the current segment of the simulated flight.
type Phase string

// Flight phases in profile order.
const (
	PhaseTaxi    Phase = "taxi"
	PhaseTakeoff Phase = "takeoff"
	PhaseClimb   Phase = "climb"
	PhaseCruise  Phase = "cruise"
	PhaseDescent Phase = "descent"
	PhaseLanding Phase = "landing"
)

// Sample is one snapshot of every instrument. Field names mirror the
// instrument ids the panel model uses.
type Sample struct {
	Timestamp     time.Time `json:"timestamp"`
	Altitude      float64   `json:"altitude"`
	Airspeed      float64   `json:"airspeed"`
	RPM           float64   `json:"rpm"`
	Phase         Phase     `json:"phase"`
	Fuel          float64   `json:"fuel"`
	Temperature   float64   `json:"temperature"`
	Pressure      float64   `json:"pressure"`
	Heading       float64   `json:"heading"`
	VerticalSpeed float64   `json:"vertical_speed"`
}

// segment describes the target readings for one phase and how many
// ticks the simulator spends in it before moving on.
type segment struct {
	phase    Phase
	ticks    int
	altitude float64
	airspeed float64
	rpm      float64
	vspeed   float64
}

// profile is the canned flight the simulator loops through.
var profile = []segment{
	{PhaseTaxi, 10, 0, 15, 900, 0},
	{PhaseTakeoff, 6, 200, 90, 2500, 800},
	{PhaseClimb, 20, 8000, 120, 2400, 700},
	{PhaseCruise, 40, 10000, 150, 2200, 0},
	{PhaseDescent, 20, 2000, 130, 1800, -600},
	{PhaseLanding, 8, 0, 60, 1200, -300},
}

// Simulator produces samples along the flight profile. Safe for
// concurrent use; Next and Subscribe may be called from any goroutine.
type Simulator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	seg     int
	tick    int
	fuel    float64
	heading float64
	subs    map[chan Sample]struct{}
}

// NewSimulator creates a simulator. The seed makes runs reproducible;
// pass e.g. time.Now().UnixNano() for varied flights.
func NewSimulator(seed int64) *Simulator {
	return &Simulator{
		rng:     rand.New(rand.NewSource(seed)),
		fuel:    100,
		heading: 90,
		subs:    make(map[chan Sample]struct{}),
	}
}

// Next advances the flight one tick and returns the new sample.
func (s *Simulator) Next() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg := profile[s.seg]
	s.tick++
	if s.tick >= seg.ticks {
		s.tick = 0
		s.seg = (s.seg + 1) % len(profile)
		if s.seg == 0 {
			// New flight, full tank.
			s.fuel = 100
		}
	}

	s.fuel -= 0.05 + s.rng.Float64()*0.05
	if s.fuel < 0 {
		s.fuel = 0
	}
	s.heading += s.rng.Float64()*4 - 2
	for s.heading < 0 {
		s.heading += 360
	}
	for s.heading >= 360 {
		s.heading -= 360
	}

	sample := Sample{
		Timestamp:     time.Now().UTC(),
		Altitude:      jitter(s.rng, seg.altitude, 50),
		Airspeed:      jitter(s.rng, seg.airspeed, 5),
		RPM:           jitter(s.rng, seg.rpm, 40),
		Phase:         seg.phase,
		Fuel:          s.fuel,
		Temperature:   jitter(s.rng, 15-seg.altitude/500, 1),
		Pressure:      jitter(s.rng, 1013-seg.altitude/30, 2),
		Heading:       s.heading,
		VerticalSpeed: jitter(s.rng, seg.vspeed, 50),
	}
	if sample.Altitude < 0 {
		sample.Altitude = 0
	}
	if sample.Airspeed < 0 {
		sample.Airspeed = 0
	}
	return sample
}

// jitter returns target plus uniform noise in [-spread, spread].
func jitter(rng *rand.Rand, target, spread float64) float64 {
	return target + (rng.Float64()*2-1)*spread
}

// Subscribe registers a receiver for future samples. The returned
// cancel function must be called to release the channel. Slow receivers
// drop samples rather than stalling the broadcast.
func (s *Simulator) Subscribe() (<-chan Sample, func()) {
	ch := make(chan Sample, 8)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// broadcast fans a sample out to all subscribers without blocking.
func (s *Simulator) broadcast(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- sample:
		default:
		}
	}
}

// Run generates a sample every interval and broadcasts it to
// subscribers until the context is cancelled.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcast(s.Next())
		}
	}
}
