package model

import "fmt"

/*

Comment is a reply to a post

UUID: primary key, generated at creation
Content: comment body
Post: the post replied to, Post.CommentList points back
Author: user who wrote the comment, set once at creation
LikerList: users who liked the comment, mirrors User.LikedCommentList
*/
type Comment struct {
	UUID      string `json:"uuid"`
	Content   string `json:"content"`
	Post      string `json:"post"`
	Author    string `json:"author"`
	LikerList IDSet  `json:"likerList"`
}

func (c *Comment) ToDocument() *Document {
	d := NewDocument(KindComment, c.UUID)
	d.SetField(FieldContent, c.Content)
	d.SetField(FieldPost, c.Post)
	d.SetField(FieldAuthor, c.Author)
	d.putList(ListLikers, c.LikerList)
	return d
}

func CommentFromDocument(d *Document) (*Comment, error) {
	if d.Kind != KindComment {
		return nil, fmt.Errorf("document %s is a %s, not a comment", d.ID, d.Kind)
	}
	return &Comment{
		UUID:      d.ID,
		Content:   d.Field(FieldContent),
		Post:      d.Field(FieldPost),
		Author:    d.Field(FieldAuthor),
		LikerList: d.List(ListLikers),
	}, nil
}
