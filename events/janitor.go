package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/relation"
	"github.com/Luismorlan/coursehub/store"
	"github.com/Luismorlan/coursehub/utils/metrics"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/sirupsen/logrus"
)

// CleanupReport counts the outcome of one cascade cleanup.
type CleanupReport struct {
	Removed int
	// Skipped targets no longer exist.
	Skipped int
	Failed  int
}

// Janitor removes a deleted user's id from the reverse lists of everything
// the user was associated with. Cleanup is best effort: failures are logged,
// counted and the event is still acknowledged. Readers tolerate the dangling
// references that remain.
type Janitor struct {
	name   string
	store  store.Store
	bus    *Bus
	policy relation.RetryPolicy

	readyOnce sync.Once
	ready     chan struct{}
}

func NewJanitor(s store.Store, bus *Bus, policy relation.RetryPolicy) *Janitor {
	return &Janitor{
		name:   "cascade_janitor",
		store:  s,
		bus:    bus,
		policy: policy,
		ready:  make(chan struct{}),
	}
}

// Ready is closed once the janitor is subscribed. Events published before
// that are not delivered to it.
func (j *Janitor) Ready() <-chan struct{} {
	return j.ready
}

func (j *Janitor) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := j.bus.Subscribe(ctx, TopicUserDeleted)
	if err != nil {
		return err
	}
	j.readyOnce.Do(func() { close(j.ready) })

	for msg := range messages {
		var evt UserDeleted
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			Log.WithField("message_id", msg.UUID).WithError(err).Error("dropping malformed user deleted event")
			msg.Ack()
			continue
		}
		j.Clean(ctx, evt)
		msg.Ack()
	}
	return nil
}

// Clean removes evt.UserID from the reverse list of every referenced target.
func (j *Janitor) Clean(ctx context.Context, evt UserDeleted) CleanupReport {
	report := CleanupReport{}
	for _, rel := range model.UserRelations() {
		if !rel.HasReverse() {
			continue
		}
		for _, target := range evt.Refs[rel.Kind] {
			err := relation.Retry(ctx, j.policy, rel.Kind, model.SideReverse, func(ctx context.Context) error {
				return j.store.RemoveFromSet(ctx, rel.TargetKind, target, rel.ReverseList, evt.UserID)
			})
			switch {
			case err == nil:
				report.Removed++
				metrics.CascadeCleanups.WithLabelValues("removed").Inc()
			case model.IsNotFound(err):
				report.Skipped++
				metrics.CascadeCleanups.WithLabelValues("skipped").Inc()
			default:
				report.Failed++
				metrics.CascadeCleanups.WithLabelValues("failed").Inc()
				Log.WithFields(logrus.Fields{
					"user":     evt.UserID,
					"relation": rel.Kind,
					"target":   target,
				}).WithError(err).Error("fail to clean reverse reference of deleted user")
			}
		}
	}

	Log.WithFields(logrus.Fields{
		"user":    evt.UserID,
		"removed": report.Removed,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("cascade cleanup finished")
	return report
}

func (j *Janitor) Name() string {
	return j.name
}

func (j *Janitor) Shutdown() {
	Log.Infoln("Module ", j.name, " gracefully shutdown")
}
