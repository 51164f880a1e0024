package service

import (
	"context"

	"github.com/Luismorlan/coursehub/events"
	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/utils"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/pkg/errors"
)

const RoleTypeInstructor = "instructor"

/*

UserUpdate carries the optional fields of an update request. Present fields
are applied in declaration order, the first failure stops the update.

StudentCourse, InstructorCourse: enroll into the course
Post, Comment: record authorship
FollowedPost, LikedPost, LikedComment: add the association
RmLikedPost, RmLikedComment: remove the association
Icon: replace the display asset
*/
type UserUpdate struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	StudentCourse    *string `json:"studentCourse"`
	InstructorCourse *string `json:"instructorCourse"`
	Post             *string `json:"post"`
	Comment          *string `json:"comment"`
	FollowedPost     *string `json:"followedPost"`
	LikedPost        *string `json:"likedPost"`
	RmLikedPost      *string `json:"rmLikedPost"`
	LikedComment     *string `json:"likedComment"`
	RmLikedComment   *string `json:"rmLikedComment"`
	Icon             *string `json:"icon"`
}

// CreateUser persists a new user with empty lists. The uuid comes from the
// identity provider.
func (s *Service) CreateUser(ctx context.Context, name string, email string, uuid string) (string, error) {
	if missing := utils.MissingFields("name", name, "email", email, "uuid", uuid); len(missing) > 0 {
		return "", model.NewValidationError("missing user field", missing...)
	}
	user := &model.User{UUID: uuid, Name: name, Email: email}
	if err := s.store.Create(ctx, user.ToDocument()); err != nil {
		return "", errors.Wrapf(err, "fail to create user %s", uuid)
	}
	Log.WithField("user", uuid).Info("user created")
	return uuid, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.loadUser(ctx, userID)
}

// GetUserView returns the user with both course lists expanded.
func (s *Service) GetUserView(ctx context.Context, userID string) (*model.UserView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views.BuildUserView(ctx, user)
}

func (s *Service) UpdateUser(ctx context.Context, userID string, update UserUpdate) error {
	if userID == "" {
		return model.NewValidationError("missing user", "userUUID")
	}
	e := s.engine
	steps := []struct {
		value *string
		apply func(ctx context.Context, userID string, value string) error
	}{
		{update.Name, e.SetName},
		{update.Email, e.SetEmail},
		{update.StudentCourse, e.AddStudentCourse},
		{update.InstructorCourse, e.AddInstructorCourse},
		{update.Post, e.AddPost},
		{update.Comment, e.AddComment},
		{update.FollowedPost, e.AddFollowedPost},
		{update.LikedPost, e.AddLikedPost},
		{update.RmLikedPost, e.RemoveLikedPost},
		{update.LikedComment, e.AddLikedComment},
		{update.RmLikedComment, e.RemoveLikedComment},
		{update.Icon, e.SetIcon},
	}
	for _, step := range steps {
		if step.value == nil {
			continue
		}
		if err := step.apply(ctx, userID, *step.value); err != nil {
			return errors.Wrapf(err, "fail to update user %s", userID)
		}
	}
	return nil
}

// DeleteUser removes the user document and hands the cleanup of reverse
// references to the cascade janitor.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	doc := user.ToDocument()
	refs := make(map[model.RelationKind][]string)
	for _, rel := range model.UserRelations() {
		if ids := doc.Sets[rel.ForwardList]; len(ids) > 0 {
			refs[rel.Kind] = ids
		}
	}

	if err := s.store.Delete(ctx, model.KindUser, userID); err != nil {
		return errors.Wrapf(err, "fail to delete user %s", userID)
	}

	if s.publisher != nil {
		evt := events.UserDeleted{UserID: userID, Refs: refs}
		if err := s.publisher.PublishUserDeleted(ctx, evt); err != nil {
			Log.WithField("user", userID).WithError(err).Error("user deleted but cleanup event was not published")
		}
	}
	Log.WithField("user", userID).Info("user deleted")
	return nil
}

// AddUserToCourse enrolls explicitUserID, or the acting user when it is
// empty. roleType "instructor" enrolls as instructor, anything else as
// student.
func (s *Service) AddUserToCourse(ctx context.Context, courseID string, actingUserID string, explicitUserID string, roleType string) (model.Role, error) {
	userID := explicitUserID
	if userID == "" {
		userID = actingUserID
	}
	if missing := utils.MissingFields("courseId", courseID, "userId", userID); len(missing) > 0 {
		return model.RoleNotEnrolled, model.NewValidationError("missing enrollment field", missing...)
	}

	if roleType == RoleTypeInstructor {
		if err := s.engine.AddInstructorCourse(ctx, userID, courseID); err != nil {
			return model.RoleNotEnrolled, err
		}
		return model.RoleInstructor, nil
	}
	if err := s.engine.AddStudentCourse(ctx, userID, courseID); err != nil {
		return model.RoleNotEnrolled, err
	}
	return model.RoleStudent, nil
}

// GetUserType resolves the user's role in the course.
func (s *Service) GetUserType(ctx context.Context, userID string, courseID string) (model.Role, error) {
	return s.roles.RoleOf(ctx, userID, courseID)
}
