package relation

import (
	"context"

	"github.com/Luismorlan/coursehub/model"
)

func (e *Engine) AddStudentCourse(ctx context.Context, userID string, courseID string) error {
	return e.Add(ctx, model.RelationStudent, userID, courseID)
}

func (e *Engine) RemoveStudentCourse(ctx context.Context, userID string, courseID string) error {
	return e.Remove(ctx, model.RelationStudent, userID, courseID)
}

func (e *Engine) AddInstructorCourse(ctx context.Context, userID string, courseID string) error {
	return e.Add(ctx, model.RelationInstructor, userID, courseID)
}

func (e *Engine) RemoveInstructorCourse(ctx context.Context, userID string, courseID string) error {
	return e.Remove(ctx, model.RelationInstructor, userID, courseID)
}

// AddPost records authorship. Post.author itself is set when the post is
// created.
func (e *Engine) AddPost(ctx context.Context, userID string, postID string) error {
	return e.Add(ctx, model.RelationPostAuthor, userID, postID)
}

func (e *Engine) RemovePost(ctx context.Context, userID string, postID string) error {
	return e.Remove(ctx, model.RelationPostAuthor, userID, postID)
}

func (e *Engine) AddComment(ctx context.Context, userID string, commentID string) error {
	return e.Add(ctx, model.RelationCommentAuthor, userID, commentID)
}

func (e *Engine) RemoveComment(ctx context.Context, userID string, commentID string) error {
	return e.Remove(ctx, model.RelationCommentAuthor, userID, commentID)
}

func (e *Engine) AddFollowedPost(ctx context.Context, userID string, postID string) error {
	return e.Add(ctx, model.RelationFollowPost, userID, postID)
}

func (e *Engine) RemoveFollowedPost(ctx context.Context, userID string, postID string) error {
	return e.Remove(ctx, model.RelationFollowPost, userID, postID)
}

func (e *Engine) AddLikedPost(ctx context.Context, userID string, postID string) error {
	return e.Add(ctx, model.RelationLikePost, userID, postID)
}

func (e *Engine) RemoveLikedPost(ctx context.Context, userID string, postID string) error {
	return e.Remove(ctx, model.RelationLikePost, userID, postID)
}

func (e *Engine) AddLikedComment(ctx context.Context, userID string, commentID string) error {
	return e.Add(ctx, model.RelationLikeComment, userID, commentID)
}

func (e *Engine) RemoveLikedComment(ctx context.Context, userID string, commentID string) error {
	return e.Remove(ctx, model.RelationLikeComment, userID, commentID)
}

// AttachComment lists a comment under its post.
func (e *Engine) AttachComment(ctx context.Context, postID string, commentID string) error {
	return e.Add(ctx, model.RelationPostComment, postID, commentID)
}

func (e *Engine) DetachComment(ctx context.Context, postID string, commentID string) error {
	return e.Remove(ctx, model.RelationPostComment, postID, commentID)
}
