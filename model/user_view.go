package model

// UserView is the response-ready form of a User. Course references are
// expanded into full Course records, in the order of the source lists.
type UserView struct {
	UUID                         string    `json:"uuid"`
	Name                         string    `json:"name"`
	Email                        string    `json:"email"`
	Icon                         string    `json:"icon"`
	StudentCourseList            []string  `json:"studentCourseList"`
	InstructorCourseList         []string  `json:"instructorCourseList"`
	PostList                     []string  `json:"postList"`
	CommentList                  []string  `json:"commentList"`
	FollowedPostList             []string  `json:"followedPostList"`
	LikedPostList                []string  `json:"likedPostList"`
	LikedCommentList             []string  `json:"likedCommentList"`
	FilledInStudentCourseList    []*Course `json:"filledInStudentCourseList"`
	FilledInInstructorCourseList []*Course `json:"filledInInstructorCourseList"`

	// SkippedReferences lists course ids that no longer resolve.
	SkippedReferences []string `json:"skippedReferences,omitempty"`
}
