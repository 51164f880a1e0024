package service

import (
	"context"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/utils"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CreateCourse creates a course and enrolls its creator as instructor.
func (s *Service) CreateCourse(ctx context.Context, creatorID string, name string, term string, description string) (string, error) {
	if missing := utils.MissingFields("creator", creatorID, "name", name); len(missing) > 0 {
		return "", model.NewValidationError("missing course field", missing...)
	}
	if _, err := s.loadUser(ctx, creatorID); err != nil {
		return "", err
	}

	course := &model.Course{UUID: uuid.New().String(), Name: name, Term: term, Description: description}
	if err := s.store.Create(ctx, course.ToDocument()); err != nil {
		return "", errors.Wrapf(err, "fail to create course %s", name)
	}
	if err := s.engine.AddInstructorCourse(ctx, creatorID, course.UUID); err != nil {
		return "", errors.Wrapf(err, "course %s created but creator was not enrolled", course.UUID)
	}

	Log.WithFields(logrus.Fields{"course": course.UUID, "creator": creatorID}).Info("course created")
	return course.UUID, nil
}

func (s *Service) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	return s.loadCourse(ctx, courseID)
}

// DeleteCourse unenrolls every member and removes the course. Only an
// instructor of the course may delete it.
func (s *Service) DeleteCourse(ctx context.Context, actingUserID string, courseID string) error {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if role := s.roleIn(course, actingUserID); role != model.RoleInstructor {
		return model.NewValidationError("only an instructor can delete the course", "courseId")
	}

	for _, userID := range course.StudentList.Slice() {
		if err := s.engine.RemoveStudentCourse(ctx, userID, courseID); err != nil && !model.IsNotFound(err) {
			return errors.Wrapf(err, "fail to unenroll student %s", userID)
		}
	}
	for _, userID := range course.InstructorList.Slice() {
		if err := s.engine.RemoveInstructorCourse(ctx, userID, courseID); err != nil && !model.IsNotFound(err) {
			return errors.Wrapf(err, "fail to unenroll instructor %s", userID)
		}
	}

	if err := s.store.Delete(ctx, model.KindCourse, courseID); err != nil {
		return errors.Wrapf(err, "fail to delete course %s", courseID)
	}
	Log.WithField("course", courseID).Info("course deleted")
	return nil
}
