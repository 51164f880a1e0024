package aggregation

import (
	"context"
	"errors"
	"testing"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/store"
	"github.com/Luismorlan/coursehub/store/storetest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCourse(t *testing.T, s store.Store, c *model.Course) {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), c.ToDocument()))
}

var courseCmp = cmp.Transformer("IDSet", func(s model.IDSet) []string { return s.Slice() })

func TestBuildUserViewKeepsSourceOrder(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	cse110 := &model.Course{UUID: "c110", Name: "CSE 110", Term: "FA21", StudentList: model.NewIDSet("u1")}
	cse100 := &model.Course{UUID: "c100", Name: "CSE 100", Term: "FA21", StudentList: model.NewIDSet("u1")}
	cse12 := &model.Course{UUID: "c12", Name: "CSE 12", Term: "SP21", InstructorList: model.NewIDSet("u1")}
	for _, c := range []*model.Course{cse110, cse100, cse12} {
		createCourse(t, s, c)
	}

	user := &model.User{
		UUID:                 "u1",
		Name:                 "gary",
		Email:                "g1@ucsd.edu",
		StudentCourseList:    model.NewIDSet("c110", "c100"),
		InstructorCourseList: model.NewIDSet("c12"),
		LikedPostList:        model.NewIDSet("p1"),
	}

	view, err := NewBuilder(s, WithMaxConcurrency(1)).BuildUserView(ctx, user)
	require.NoError(t, err)

	want := &model.UserView{
		UUID:                         "u1",
		Name:                         "gary",
		Email:                        "g1@ucsd.edu",
		StudentCourseList:            []string{"c110", "c100"},
		InstructorCourseList:         []string{"c12"},
		PostList:                     []string{},
		CommentList:                  []string{},
		FollowedPostList:             []string{},
		LikedPostList:                []string{"p1"},
		LikedCommentList:             []string{},
		FilledInStudentCourseList:    []*model.Course{cse110, cse100},
		FilledInInstructorCourseList: []*model.Course{cse12},
	}
	if diff := cmp.Diff(want, view, courseCmp, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("BuildUserView() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUserViewEmptyLists(t *testing.T) {
	s := storetest.NewStore(t)
	view, err := NewBuilder(s).BuildUserView(context.Background(), &model.User{UUID: "u1", Name: "gary"})
	require.NoError(t, err)
	assert.NotNil(t, view.FilledInStudentCourseList)
	assert.NotNil(t, view.FilledInInstructorCourseList)
	assert.Empty(t, view.FilledInStudentCourseList)
	assert.Empty(t, view.SkippedReferences)
}

func TestBuildUserViewSkipsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	createCourse(t, s, &model.Course{UUID: "c1", Name: "CSE 110"})
	createCourse(t, s, &model.Course{UUID: "c3", Name: "CSE 30"})

	user := &model.User{
		UUID:                 "u1",
		StudentCourseList:    model.NewIDSet("c1", "gone", "c3"),
		InstructorCourseList: model.NewIDSet("gone-too"),
	}
	view, err := NewBuilder(s).BuildUserView(ctx, user)
	require.NoError(t, err)

	names := []string{}
	for _, c := range view.FilledInStudentCourseList {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"CSE 110", "CSE 30"}, names)
	assert.Empty(t, view.FilledInInstructorCourseList)
	assert.Equal(t, []string{"gone", "gone-too"}, view.SkippedReferences)
	// The raw reference lists are reported untouched.
	assert.Equal(t, []string{"c1", "gone", "c3"}, view.StudentCourseList)
}

func TestBuildUserViewFailsOnUnavailableStore(t *testing.T) {
	ctx := context.Background()
	flaky := storetest.NewFlakyStore(storetest.NewStore(t))
	createCourse(t, flaky, &model.Course{UUID: "c1"})
	createCourse(t, flaky, &model.Course{UUID: "c2"})
	flaky.FailNext(storetest.OpGet, model.KindCourse, 1,
		&model.StoreUnavailableError{Op: "get", Err: errors.New("connection refused")})

	user := &model.User{UUID: "u1", StudentCourseList: model.NewIDSet("c1", "c2")}
	_, err := NewBuilder(flaky).BuildUserView(ctx, user)
	assert.True(t, model.IsStoreUnavailable(err), "got %v", err)
}

func TestBuildUserViewFetchesConcurrently(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	ids := []string{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		createCourse(t, s, &model.Course{UUID: id, Name: "course " + id})
		ids = append(ids, id)
	}

	user := &model.User{UUID: "u1", StudentCourseList: model.NewIDSet(ids...), InstructorCourseList: model.NewIDSet(ids...)}
	view, err := NewBuilder(s, WithMaxConcurrency(3)).BuildUserView(ctx, user)
	require.NoError(t, err)

	got := []string{}
	for _, c := range view.FilledInInstructorCourseList {
		got = append(got, c.UUID)
	}
	assert.Equal(t, ids, got)
	assert.Len(t, view.FilledInStudentCourseList, len(ids))
}
