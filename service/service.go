// Package service orchestrates request level operations: it loads entities,
// drives the relation engine and builds read views. The acting user is always
// an explicit parameter.
package service

import (
	"context"

	"github.com/Luismorlan/coursehub/aggregation"
	"github.com/Luismorlan/coursehub/events"
	"github.com/Luismorlan/coursehub/membership"
	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/relation"
	"github.com/Luismorlan/coursehub/store"
	"github.com/pkg/errors"
)

// UserEventPublisher receives lifecycle events that need asynchronous
// follow-up.
type UserEventPublisher interface {
	PublishUserDeleted(ctx context.Context, evt events.UserDeleted) error
}

type Service struct {
	store     store.Store
	engine    *relation.Engine
	views     *aggregation.Builder
	roles     *membership.Resolver
	publisher UserEventPublisher
}

func New(s store.Store, engine *relation.Engine, views *aggregation.Builder, publisher UserEventPublisher) *Service {
	return &Service{
		store:     s,
		engine:    engine,
		views:     views,
		roles:     membership.NewResolver(s),
		publisher: publisher,
	}
}

func (s *Service) loadUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, model.NewValidationError("missing user", "userUUID")
	}
	doc, err := s.store.Get(ctx, model.KindUser, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to load user %s", userID)
	}
	return model.UserFromDocument(doc)
}

func (s *Service) loadCourse(ctx context.Context, courseID string) (*model.Course, error) {
	if courseID == "" {
		return nil, model.NewValidationError("missing course", "courseId")
	}
	doc, err := s.store.Get(ctx, model.KindCourse, courseID)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to load course %s", courseID)
	}
	return model.CourseFromDocument(doc)
}

func (s *Service) loadPost(ctx context.Context, postID string) (*model.Post, error) {
	if postID == "" {
		return nil, model.NewValidationError("missing post", "postId")
	}
	doc, err := s.store.Get(ctx, model.KindPost, postID)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to load post %s", postID)
	}
	return model.PostFromDocument(doc)
}

func (s *Service) loadComment(ctx context.Context, commentID string) (*model.Comment, error) {
	if commentID == "" {
		return nil, model.NewValidationError("missing comment", "commentId")
	}
	doc, err := s.store.Get(ctx, model.KindComment, commentID)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to load comment %s", commentID)
	}
	return model.CommentFromDocument(doc)
}

func (s *Service) roleIn(course *model.Course, userID string) model.Role {
	return membership.ResolveRole(course, userID)
}
