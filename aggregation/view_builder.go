// Package aggregation materializes denormalized read views by joining the
// documents an entity references.
package aggregation

import (
	"context"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/store"
	"github.com/Luismorlan/coursehub/utils/metrics"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultMaxConcurrency = 16

var idSetConverter = copier.TypeConverter{
	SrcType: model.IDSet{},
	DstType: []string{},
	Fn: func(src interface{}) (interface{}, error) {
		set, ok := src.(model.IDSet)
		if !ok {
			return nil, errors.New("expected IDSet")
		}
		return set.Slice(), nil
	},
}

type Builder struct {
	store          store.Store
	maxConcurrency int
}

type Option func(*Builder)

// WithMaxConcurrency bounds the number of in-flight course fetches of one
// view.
func WithMaxConcurrency(n int) Option {
	return func(b *Builder) {
		b.maxConcurrency = n
	}
}

func NewBuilder(s store.Store, opts ...Option) *Builder {
	b := &Builder{store: s, maxConcurrency: DefaultMaxConcurrency}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildUserView copies the user's fields and expands both course lists. All
// courses are fetched concurrently; results keep the order of the source
// lists. A course that no longer exists is skipped and reported in
// SkippedReferences, any other failure fails the whole view.
func (b *Builder) BuildUserView(ctx context.Context, user *model.User) (*model.UserView, error) {
	view := &model.UserView{}
	if err := copier.CopyWithOption(view, user, copier.Option{
		Converters: []copier.TypeConverter{idSetConverter},
	}); err != nil {
		return nil, errors.Wrapf(err, "fail to copy user %s into view", user.UUID)
	}

	studentIDs := user.StudentCourseList.Slice()
	instructorIDs := user.InstructorCourseList.Slice()
	students := make([]fetched, len(studentIDs))
	instructors := make([]fetched, len(instructorIDs))

	g, gctx := errgroup.WithContext(ctx)
	if b.maxConcurrency > 0 {
		g.SetLimit(b.maxConcurrency)
	}
	b.fanOut(gctx, g, user.UUID, studentIDs, students)
	b.fanOut(gctx, g, user.UUID, instructorIDs, instructors)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view.FilledInStudentCourseList, view.SkippedReferences = join(students, view.SkippedReferences)
	view.FilledInInstructorCourseList, view.SkippedReferences = join(instructors, view.SkippedReferences)
	return view, nil
}

type fetched struct {
	course   *model.Course
	dangling *model.DanglingReferenceError
}

// fanOut schedules one fetch per id. Each goroutine writes only its own slot
// of out.
func (b *Builder) fanOut(ctx context.Context, g *errgroup.Group, referrer string, ids []string, out []fetched) {
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			course, err := b.fetchCourse(ctx, id, referrer)
			var dangling *model.DanglingReferenceError
			if errors.As(err, &dangling) {
				out[i] = fetched{dangling: dangling}
				return nil
			}
			if err != nil {
				return err
			}
			out[i] = fetched{course: course}
			return nil
		})
	}
}

func (b *Builder) fetchCourse(ctx context.Context, id string, referrer string) (*model.Course, error) {
	doc, err := b.store.Get(ctx, model.KindCourse, id)
	if model.IsNotFound(err) {
		return nil, &model.DanglingReferenceError{Kind: model.KindCourse, ID: id, ReferrerID: referrer}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "fail to load course %s", id)
	}
	return model.CourseFromDocument(doc)
}

func join(results []fetched, skipped []string) ([]*model.Course, []string) {
	courses := make([]*model.Course, 0, len(results))
	for _, r := range results {
		if r.dangling != nil {
			metrics.DanglingReferences.WithLabelValues(string(r.dangling.Kind)).Inc()
			Log.WithFields(logrus.Fields{
				"course":   r.dangling.ID,
				"referrer": r.dangling.ReferrerID,
			}).Warn("skipping dangling course reference")
			skipped = append(skipped, r.dangling.ID)
			continue
		}
		courses = append(courses, r.course)
	}
	return courses, skipped
}
