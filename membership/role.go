// Package membership answers which role a user holds in a course.
package membership

import (
	"context"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/store"
	"github.com/pkg/errors"
)

// ResolveRole checks the instructor list before the student list, so a user
// listed in both is an instructor.
func ResolveRole(course *model.Course, userID string) model.Role {
	if course == nil || userID == "" {
		return model.RoleNotEnrolled
	}
	if course.InstructorList.Contains(userID) {
		return model.RoleInstructor
	}
	if course.StudentList.Contains(userID) {
		return model.RoleStudent
	}
	return model.RoleNotEnrolled
}

type Resolver struct {
	store store.Store
}

func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// RoleOf loads the course and resolves the user's role in it. A missing
// course is a NotFoundError, a user outside the course is RoleNotEnrolled.
func (r *Resolver) RoleOf(ctx context.Context, userID string, courseID string) (model.Role, error) {
	missing := []string{}
	if userID == "" {
		missing = append(missing, "userId")
	}
	if courseID == "" {
		missing = append(missing, "courseId")
	}
	if len(missing) > 0 {
		return model.RoleNotEnrolled, model.NewValidationError("missing role lookup input", missing...)
	}

	doc, err := r.store.Get(ctx, model.KindCourse, courseID)
	if err != nil {
		return model.RoleNotEnrolled, errors.Wrapf(err, "fail to load course %s", courseID)
	}
	course, err := model.CourseFromDocument(doc)
	if err != nil {
		return model.RoleNotEnrolled, err
	}
	return ResolveRole(course, userID), nil
}
