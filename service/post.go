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

// CreatePost publishes a post in a course the author is enrolled in.
func (s *Service) CreatePost(ctx context.Context, authorID string, courseID string, title string, content string) (string, error) {
	if missing := utils.MissingFields("author", authorID, "courseId", courseID, "title", title); len(missing) > 0 {
		return "", model.NewValidationError("missing post field", missing...)
	}
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return "", err
	}
	if !s.roleIn(course, authorID).IsEnrolled() {
		return "", model.NewValidationError("author is not enrolled in the course", "courseId")
	}

	post := &model.Post{
		UUID:    uuid.New().String(),
		Title:   title,
		Content: content,
		Course:  courseID,
		Author:  authorID,
	}
	if err := s.store.Create(ctx, post.ToDocument()); err != nil {
		return "", errors.Wrapf(err, "fail to create post in course %s", courseID)
	}
	if err := s.engine.AddPost(ctx, authorID, post.UUID); err != nil {
		return "", errors.Wrapf(err, "post %s created but not linked to its author", post.UUID)
	}
	return post.UUID, nil
}

// CreateComment replies to a post. The comment is listed under the post and
// under its author.
func (s *Service) CreateComment(ctx context.Context, authorID string, postID string, content string) (string, error) {
	if missing := utils.MissingFields("author", authorID, "postId", postID, "content", content); len(missing) > 0 {
		return "", model.NewValidationError("missing comment field", missing...)
	}
	if _, err := s.loadUser(ctx, authorID); err != nil {
		return "", err
	}
	if _, err := s.loadPost(ctx, postID); err != nil {
		return "", err
	}

	comment := &model.Comment{
		UUID:    uuid.New().String(),
		Content: content,
		Post:    postID,
		Author:  authorID,
	}
	if err := s.store.Create(ctx, comment.ToDocument()); err != nil {
		return "", errors.Wrapf(err, "fail to create comment on post %s", postID)
	}
	if err := s.engine.AttachComment(ctx, postID, comment.UUID); err != nil {
		return "", errors.Wrapf(err, "comment %s created but not attached to post", comment.UUID)
	}
	if err := s.engine.AddComment(ctx, authorID, comment.UUID); err != nil {
		return "", errors.Wrapf(err, "comment %s created but not linked to its author", comment.UUID)
	}
	return comment.UUID, nil
}

// DeletePost removes a post together with its comments. Only the author may
// delete it. Users that followed or liked it are unlinked first, a user that
// no longer exists is skipped.
func (s *Service) DeletePost(ctx context.Context, actingUserID string, postID string) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.Author != actingUserID {
		return model.NewValidationError("only the author can delete the post", "postId")
	}

	for _, commentID := range post.CommentList.Slice() {
		comment, err := s.loadComment(ctx, commentID)
		if model.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.removeComment(ctx, comment); err != nil {
			return err
		}
	}
	for _, userID := range post.FollowerList.Slice() {
		if err := s.engine.RemoveFollowedPost(ctx, userID, postID); err != nil && !model.IsNotFound(err) {
			return errors.Wrapf(err, "fail to unfollow post %s for %s", postID, userID)
		}
	}
	for _, userID := range post.LikerList.Slice() {
		if err := s.engine.RemoveLikedPost(ctx, userID, postID); err != nil && !model.IsNotFound(err) {
			return errors.Wrapf(err, "fail to unlike post %s for %s", postID, userID)
		}
	}
	if err := s.engine.RemovePost(ctx, post.Author, postID); err != nil && !model.IsNotFound(err) {
		return errors.Wrapf(err, "fail to unlink post %s from its author", postID)
	}

	if err := s.store.Delete(ctx, model.KindPost, postID); err != nil {
		return errors.Wrapf(err, "fail to delete post %s", postID)
	}
	Log.WithFields(logrus.Fields{"post": postID, "course": post.Course}).Info("post deleted")
	return nil
}

// DeleteComment removes a single comment. Only its author may delete it.
func (s *Service) DeleteComment(ctx context.Context, actingUserID string, commentID string) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.Author != actingUserID {
		return model.NewValidationError("only the author can delete the comment", "commentId")
	}
	if err := s.removeComment(ctx, comment); err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{"comment": commentID, "post": comment.Post}).Info("comment deleted")
	return nil
}

func (s *Service) removeComment(ctx context.Context, comment *model.Comment) error {
	for _, userID := range comment.LikerList.Slice() {
		if err := s.engine.RemoveLikedComment(ctx, userID, comment.UUID); err != nil && !model.IsNotFound(err) {
			return errors.Wrapf(err, "fail to unlike comment %s for %s", comment.UUID, userID)
		}
	}
	if err := s.engine.DetachComment(ctx, comment.Post, comment.UUID); err != nil && !model.IsNotFound(err) {
		return errors.Wrapf(err, "fail to detach comment %s", comment.UUID)
	}
	if err := s.engine.RemoveComment(ctx, comment.Author, comment.UUID); err != nil && !model.IsNotFound(err) {
		return errors.Wrapf(err, "fail to unlink comment %s from its author", comment.UUID)
	}
	if err := s.store.Delete(ctx, model.KindComment, comment.UUID); err != nil && !model.IsNotFound(err) {
		return errors.Wrapf(err, "fail to delete comment %s", comment.UUID)
	}
	return nil
}
