package usecase

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/V4T54L/log-tracer/internal/domain"
)

var (
	environments = []string{"dev", "test", "stage", "prod"}
	hostnames    = []string{"mesos-node-1", "mesos-node-2", "mesos-node-3", "oldfaithfull"}
	appIDs       = []string{"smooth-sink", "wild-webapp", "terrific-transformer", "dashing-database"}
)

// EventGenerator builds synthetic log events from small fixed catalogs.
type EventGenerator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewEventGenerator creates a generator. A nil rng uses a randomly seeded source
// and a nil clock uses time.Now.
func NewEventGenerator(rng *rand.Rand, now func() time.Time) *EventGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &EventGenerator{rng: rng, now: now}
}

// Next returns the event carrying sequence number seq.
func (g *EventGenerator) Next(seq int) domain.LogEvent {
	return domain.LogEvent{
		Timestamp: g.now(),
		Env:       pick(g.rng, environments),
		Host:      pick(g.rng, hostnames),
		AppID:     pick(g.rng, appIDs),
		Level:     pick(g.rng, domain.Levels),
		Message:   fmt.Sprintf("This is an auto generated log message. Its number %d", seq),
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
