package model

import "fmt"

/*

User is a member of the forum

UUID: primary key, supplied by the identity provider at creation, immutable
Name, Email: profile fields, set directly
Icon: reference to the display asset

StudentCourseList: courses the user takes, mirrored by Course.StudentList
InstructorCourseList: courses the user teaches, mirrored by Course.InstructorList
PostList: posts the user authored, Post.Author points back
CommentList: comments the user authored, Comment.Author points back
FollowedPostList: mirrored by Post.FollowerList
LikedPostList: mirrored by Post.LikerList
LikedCommentList: mirrored by Comment.LikerList
*/
type User struct {
	UUID                 string `json:"uuid"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Icon                 string `json:"icon"`
	StudentCourseList    IDSet  `json:"studentCourseList"`
	InstructorCourseList IDSet  `json:"instructorCourseList"`
	PostList             IDSet  `json:"postList"`
	CommentList          IDSet  `json:"commentList"`
	FollowedPostList     IDSet  `json:"followedPostList"`
	LikedPostList        IDSet  `json:"likedPostList"`
	LikedCommentList     IDSet  `json:"likedCommentList"`
}

func (u *User) ToDocument() *Document {
	d := NewDocument(KindUser, u.UUID)
	d.SetField(FieldName, u.Name)
	d.SetField(FieldEmail, u.Email)
	d.SetField(FieldIcon, u.Icon)
	d.putList(ListStudentCourses, u.StudentCourseList)
	d.putList(ListInstructorCourses, u.InstructorCourseList)
	d.putList(ListPosts, u.PostList)
	d.putList(ListComments, u.CommentList)
	d.putList(ListFollowedPosts, u.FollowedPostList)
	d.putList(ListLikedPosts, u.LikedPostList)
	d.putList(ListLikedComments, u.LikedCommentList)
	return d
}

func UserFromDocument(d *Document) (*User, error) {
	if d.Kind != KindUser {
		return nil, fmt.Errorf("document %s is a %s, not a user", d.ID, d.Kind)
	}
	return &User{
		UUID:                 d.ID,
		Name:                 d.Field(FieldName),
		Email:                d.Field(FieldEmail),
		Icon:                 d.Field(FieldIcon),
		StudentCourseList:    d.List(ListStudentCourses),
		InstructorCourseList: d.List(ListInstructorCourses),
		PostList:             d.List(ListPosts),
		CommentList:          d.List(ListComments),
		FollowedPostList:     d.List(ListFollowedPosts),
		LikedPostList:        d.List(ListLikedPosts),
		LikedCommentList:     d.List(ListLikedComments),
	}, nil
}
