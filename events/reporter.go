package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Luismorlan/coursehub/relation"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/sirupsen/logrus"
)

const RelationChangeCounter = "coursehub.relation.changed"

// StatsdCounter is the part of *statsd.Client the reporter needs.
type StatsdCounter interface {
	Incr(name string, tags []string, rate float64) error
}

// Reporter listens to applied association changes and counts them in
// Datadog, tagged by relation and op. With a nil client it only logs.
type Reporter struct {
	bus    *Bus
	statsd StatsdCounter

	readyOnce sync.Once
	ready     chan struct{}
}

func NewReporter(bus *Bus, statsd StatsdCounter) *Reporter {
	return &Reporter{
		bus:    bus,
		statsd: statsd,
		ready:  make(chan struct{}),
	}
}

// Ready is closed once the reporter is subscribed.
func (r *Reporter) Ready() <-chan struct{} {
	return r.ready
}

func (r *Reporter) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.bus.Subscribe(ctx, TopicRelationChanged)
	if err != nil {
		return err
	}
	r.readyOnce.Do(func() { close(r.ready) })

	for msg := range messages {
		msg.Ack()
		var change relation.Change
		if err := json.Unmarshal(msg.Payload, &change); err != nil {
			Log.WithError(err).Warn("malformed relation change event")
			continue
		}
		r.report(change)
	}
	return nil
}

func (r *Reporter) report(change relation.Change) {
	Log.WithFields(logrus.Fields{
		"relation": change.Relation,
		"op":       change.Op,
		"owner":    change.OwnerID,
		"target":   change.TargetID,
	}).Debug("association changed")

	if r.statsd == nil {
		return
	}
	tags := []string{
		"relation:" + string(change.Relation),
		"op:" + string(change.Op),
	}
	if err := r.statsd.Incr(RelationChangeCounter, tags, 1); err != nil {
		Log.WithError(err).Infoln("cannot report relation change")
	}
}

func (r *Reporter) Name() string {
	return "relation_reporter"
}

func (r *Reporter) Shutdown() {}
