package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/relation"
	"github.com/Luismorlan/coursehub/store/storetest"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ StatsdCounter = (*statsd.Client)(nil)

type incr struct {
	name string
	tags []string
}

type fakeStatsd struct {
	mu    sync.Mutex
	calls []incr
}

func (f *fakeStatsd) Incr(name string, tags []string, rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, incr{name: name, tags: tags})
	return nil
}

func (f *fakeStatsd) snapshot() []incr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]incr{}, f.calls...)
}

func TestReporterCountsRelationChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := storetest.NewStore(t)
	bus := NewBus(NewLogrusAdapter(Log))
	defer bus.Close()
	fake := &fakeStatsd{}
	reporter := NewReporter(bus, fake)
	go reporter.RunModule(ctx)
	<-reporter.Ready()

	require.NoError(t, s.Create(ctx, (&model.User{UUID: "u1"}).ToDocument()))
	require.NoError(t, s.Create(ctx, (&model.Course{UUID: "c1"}).ToDocument()))
	engine := relation.NewEngine(s, relation.WithRetryPolicy(testPolicy), relation.WithObserver(bus))
	require.NoError(t, engine.AddStudentCourse(ctx, "u1", "c1"))
	require.NoError(t, engine.RemoveStudentCourse(ctx, "u1", "c1"))

	assert.Eventually(t, func() bool { return len(fake.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []incr{
		{name: RelationChangeCounter, tags: []string{"relation:student", "op:add"}},
		{name: RelationChangeCounter, tags: []string{"relation:student", "op:remove"}},
	}, fake.snapshot())
}

func TestReporterWithoutStatsd(t *testing.T) {
	r := NewReporter(nil, nil)
	assert.NotPanics(t, func() {
		r.report(relation.Change{Relation: model.RelationLikePost, Op: relation.OpAdd, OwnerID: "u1", TargetID: "p1"})
	})
}
