package model

/*

Relation describes one kind of association between an owner and a target.

Kind: name of the relation
OwnerKind: entity holding the forward list, a User for every user relation
ForwardList: list on the owner that receives the target's uuid
TargetKind: entity referenced by the forward list
ReverseList: list on the target that mirrors the owner's uuid. Empty when the
	back-reference is a scalar set once at creation, e.g. Post.author.
*/
type Relation struct {
	Kind        RelationKind
	OwnerKind   Kind
	ForwardList string
	TargetKind  Kind
	ReverseList string
}

type RelationKind string

const (
	RelationStudent       RelationKind = "student"
	RelationInstructor    RelationKind = "instructor"
	RelationPostAuthor    RelationKind = "post_author"
	RelationCommentAuthor RelationKind = "comment_author"
	RelationFollowPost    RelationKind = "follow_post"
	RelationLikePost      RelationKind = "like_post"
	RelationLikeComment   RelationKind = "like_comment"
	RelationPostComment   RelationKind = "post_comment"
)

var relations = map[RelationKind]Relation{
	RelationStudent: {
		Kind: RelationStudent, OwnerKind: KindUser, ForwardList: ListStudentCourses,
		TargetKind: KindCourse, ReverseList: ListStudents,
	},
	RelationInstructor: {
		Kind: RelationInstructor, OwnerKind: KindUser, ForwardList: ListInstructorCourses,
		TargetKind: KindCourse, ReverseList: ListInstructors,
	},
	RelationPostAuthor: {
		Kind: RelationPostAuthor, OwnerKind: KindUser, ForwardList: ListPosts,
		TargetKind: KindPost,
	},
	RelationCommentAuthor: {
		Kind: RelationCommentAuthor, OwnerKind: KindUser, ForwardList: ListComments,
		TargetKind: KindComment,
	},
	RelationFollowPost: {
		Kind: RelationFollowPost, OwnerKind: KindUser, ForwardList: ListFollowedPosts,
		TargetKind: KindPost, ReverseList: ListFollowers,
	},
	RelationLikePost: {
		Kind: RelationLikePost, OwnerKind: KindUser, ForwardList: ListLikedPosts,
		TargetKind: KindPost, ReverseList: ListLikers,
	},
	RelationLikeComment: {
		Kind: RelationLikeComment, OwnerKind: KindUser, ForwardList: ListLikedComments,
		TargetKind: KindComment, ReverseList: ListLikers,
	},
	RelationPostComment: {
		Kind: RelationPostComment, OwnerKind: KindPost, ForwardList: ListComments,
		TargetKind: KindComment,
	},
}

func LookupRelation(kind RelationKind) (Relation, bool) {
	r, ok := relations[kind]
	return r, ok
}

// UserRelations returns every relation owned by a User, in a stable order.
func UserRelations() []Relation {
	kinds := []RelationKind{
		RelationStudent,
		RelationInstructor,
		RelationPostAuthor,
		RelationCommentAuthor,
		RelationFollowPost,
		RelationLikePost,
		RelationLikeComment,
	}
	out := make([]Relation, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, relations[k])
	}
	return out
}

func (r Relation) HasReverse() bool {
	return r.ReverseList != ""
}
