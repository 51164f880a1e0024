package model

import "fmt"

/*

Post is a thread started by a user inside a course

UUID: primary key, generated at creation
Title, Content: post body in plain text
Course: course the post belongs to
Author: user who wrote the post. Set once at creation and never reassigned,
	it is a back-reference and not an ownership pointer.

CommentList: comments replying to this post, Comment.Post points back
FollowerList: users following the post, mirrors User.FollowedPostList
LikerList: users who liked the post, mirrors User.LikedPostList
*/
type Post struct {
	UUID         string `json:"uuid"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Course       string `json:"course"`
	Author       string `json:"author"`
	CommentList  IDSet  `json:"commentList"`
	FollowerList IDSet  `json:"followerList"`
	LikerList    IDSet  `json:"likerList"`
}

func (p *Post) ToDocument() *Document {
	d := NewDocument(KindPost, p.UUID)
	d.SetField(FieldTitle, p.Title)
	d.SetField(FieldContent, p.Content)
	d.SetField(FieldCourse, p.Course)
	d.SetField(FieldAuthor, p.Author)
	d.putList(ListComments, p.CommentList)
	d.putList(ListFollowers, p.FollowerList)
	d.putList(ListLikers, p.LikerList)
	return d
}

func PostFromDocument(d *Document) (*Post, error) {
	if d.Kind != KindPost {
		return nil, fmt.Errorf("document %s is a %s, not a post", d.ID, d.Kind)
	}
	return &Post{
		UUID:         d.ID,
		Title:        d.Field(FieldTitle),
		Content:      d.Field(FieldContent),
		Course:       d.Field(FieldCourse),
		Author:       d.Field(FieldAuthor),
		CommentList:  d.List(ListComments),
		FollowerList: d.List(ListFollowers),
		LikerList:    d.List(ListLikers),
	}, nil
}
