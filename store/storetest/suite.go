package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SuiteOptions struct {
	SkipConcurrency bool
}

// RunStoreSuite checks the Store contract against the store returned by
// newStore. newStore is called once per subtest.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) store.Store, opts SuiteOptions) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		doc := model.NewDocument(model.KindUser, "u1")
		doc.SetField(model.FieldName, "gary")
		doc.SetField(model.FieldEmail, "g1@ucsd.edu")
		require.NoError(t, s.Create(ctx, doc))

		got, err := s.Get(ctx, model.KindUser, "u1")
		require.NoError(t, err)
		assert.Equal(t, model.KindUser, got.Kind)
		assert.Equal(t, "u1", got.ID)
		assert.Equal(t, "gary", got.Field(model.FieldName))
		assert.Equal(t, "g1@ucsd.edu", got.Field(model.FieldEmail))
		for _, list := range model.SetFieldsOf(model.KindUser) {
			assert.NotNil(t, got.Sets[list], list)
			assert.Empty(t, got.Sets[list], list)
		}
	})

	t.Run("create keeps initial lists", func(t *testing.T) {
		s := newStore(t)
		doc := model.NewDocument(model.KindCourse, "c1")
		doc.AddToSet(model.ListInstructors, "u1")
		require.NoError(t, s.Create(ctx, doc))

		got, err := s.Get(ctx, model.KindCourse, "c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, got.Sets[model.ListInstructors])
		assert.Equal(t, []string{}, got.Sets[model.ListStudents])
	})

	t.Run("duplicate create", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, model.NewDocument(model.KindCourse, "c1")))
		err := s.Create(ctx, model.NewDocument(model.KindCourse, "c1"))
		assert.True(t, errors.Is(err, store.ErrAlreadyExists), "got %v", err)
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, model.KindCourse, "nope")
		assert.True(t, model.IsNotFound(err), "got %v", err)
	})

	t.Run("add to set is idempotent and ordered", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, model.NewDocument(model.KindUser, "u1")))
		for _, c := range []string{"c3", "c1", "c2", "c1", "c3"} {
			require.NoError(t, s.AddToSet(ctx, model.KindUser, "u1", model.ListStudentCourses, c))
		}
		got, err := s.Get(ctx, model.KindUser, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c3", "c1", "c2"}, got.Sets[model.ListStudentCourses])
	})

	t.Run("remove from set", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, model.NewDocument(model.KindPost, "p1")))
		require.NoError(t, s.AddToSet(ctx, model.KindPost, "p1", model.ListLikers, "u1"))
		require.NoError(t, s.AddToSet(ctx, model.KindPost, "p1", model.ListLikers, "u2"))

		require.NoError(t, s.RemoveFromSet(ctx, model.KindPost, "p1", model.ListLikers, "u9"))
		require.NoError(t, s.RemoveFromSet(ctx, model.KindPost, "p1", model.ListLikers, "u1"))
		require.NoError(t, s.RemoveFromSet(ctx, model.KindPost, "p1", model.ListLikers, "u1"))

		got, err := s.Get(ctx, model.KindPost, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"u2"}, got.Sets[model.ListLikers])
	})

	t.Run("set operations on missing document", func(t *testing.T) {
		s := newStore(t)
		err := s.AddToSet(ctx, model.KindCourse, "nope", model.ListStudents, "u1")
		assert.True(t, model.IsNotFound(err), "got %v", err)
		err = s.RemoveFromSet(ctx, model.KindCourse, "nope", model.ListStudents, "u1")
		assert.True(t, model.IsNotFound(err), "got %v", err)
		err = s.SetField(ctx, model.KindCourse, "nope", model.FieldName, "x")
		assert.True(t, model.IsNotFound(err), "got %v", err)
	})

	t.Run("set field", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, model.NewDocument(model.KindUser, "u1")))
		require.NoError(t, s.SetField(ctx, model.KindUser, "u1", model.FieldIcon, "cat.png"))
		require.NoError(t, s.SetField(ctx, model.KindUser, "u1", model.FieldIcon, "dog.png"))

		got, err := s.Get(ctx, model.KindUser, "u1")
		require.NoError(t, err)
		assert.Equal(t, "dog.png", got.Field(model.FieldIcon))
	})

	t.Run("invalid input", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, model.NewDocument(model.KindUser, "u1")))
		err := s.AddToSet(ctx, model.KindUser, "u1", "bogusList", "c1")
		assert.True(t, model.IsValidation(err), "got %v", err)
		err = s.AddToSet(ctx, model.KindUser, "u1", model.ListStudentCourses, "")
		assert.True(t, model.IsValidation(err), "got %v", err)
		err = s.SetField(ctx, model.KindUser, "u1", model.ListStudentCourses, "x")
		assert.True(t, model.IsValidation(err), "got %v", err)
		_, err = s.Get(ctx, model.KindUser, "")
		assert.True(t, model.IsValidation(err), "got %v", err)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		doc := model.NewDocument(model.KindUser, "u1")
		doc.AddToSet(model.ListLikedPosts, "p1")
		require.NoError(t, s.Create(ctx, doc))
		require.NoError(t, s.Delete(ctx, model.KindUser, "u1"))
		require.NoError(t, s.Delete(ctx, model.KindUser, "u1"))

		_, err := s.Get(ctx, model.KindUser, "u1")
		assert.True(t, model.IsNotFound(err), "got %v", err)

		// The id is free again and comes back with empty lists.
		require.NoError(t, s.Create(ctx, model.NewDocument(model.KindUser, "u1")))
		got, err := s.Get(ctx, model.KindUser, "u1")
		require.NoError(t, err)
		assert.Empty(t, got.Sets[model.ListLikedPosts])
	})

	if opts.SkipConcurrency {
		return
	}

	t.Run("concurrent adds of distinct members all land", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, model.NewDocument(model.KindCourse, "c1")))

		const n = 10
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = s.AddToSet(ctx, model.KindCourse, "c1", model.ListStudents, fmt.Sprintf("u%d", i))
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}

		got, err := s.Get(ctx, model.KindCourse, "c1")
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"u0", "u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8", "u9"},
			got.Sets[model.ListStudents])
	})

	t.Run("concurrent adds of the same member converge", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, model.NewDocument(model.KindCourse, "c1")))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.AddToSet(ctx, model.KindCourse, "c1", model.ListInstructors, "u1"))
			}()
		}
		wg.Wait()

		got, err := s.Get(ctx, model.KindCourse, "c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, got.Sets[model.ListInstructors])
	})
}
