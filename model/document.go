package model

/*

Document is the raw, store-level representation of every entity.

Kind: which entity collection the document belongs to
ID: opaque unique id of the entity, immutable
Fields: scalar fields such as name, email, author
Sets: association lists, every list is a set of uuids kept in insertion order

Stores only understand Documents. Typed entities convert to and from them via
ToDocument and the <Entity>FromDocument functions.
*/
type Document struct {
	Kind   Kind                `json:"kind"`
	ID     string              `json:"id"`
	Fields map[string]string   `json:"fields"`
	Sets   map[string][]string `json:"sets"`
}

type Kind string

const (
	KindUser    Kind = "user"
	KindCourse  Kind = "course"
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// Scalar field names.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldIcon        = "icon"
	FieldTerm        = "term"
	FieldDescription = "description"
	FieldTitle       = "title"
	FieldContent     = "content"
	FieldAuthor      = "author"
	FieldCourse      = "course"
	FieldPost        = "post"
)

// List field names, these match the json names of the typed entities.
const (
	ListStudentCourses    = "studentCourseList"
	ListInstructorCourses = "instructorCourseList"
	ListPosts             = "postList"
	ListComments          = "commentList"
	ListFollowedPosts     = "followedPostList"
	ListLikedPosts        = "likedPostList"
	ListLikedComments     = "likedCommentList"
	ListStudents          = "studentList"
	ListInstructors       = "instructorList"
	ListFollowers         = "followerList"
	ListLikers            = "likerList"
)

var setFieldsByKind = map[Kind][]string{
	KindUser: {
		ListStudentCourses,
		ListInstructorCourses,
		ListPosts,
		ListComments,
		ListFollowedPosts,
		ListLikedPosts,
		ListLikedComments,
	},
	KindCourse:  {ListStudents, ListInstructors},
	KindPost:    {ListComments, ListFollowers, ListLikers},
	KindComment: {ListLikers},
}

// SetFieldsOf returns the list fields a document of the given kind carries.
func SetFieldsOf(kind Kind) []string {
	return setFieldsByKind[kind]
}

func IsValidKind(kind Kind) bool {
	_, ok := setFieldsByKind[kind]
	return ok
}

// NewDocument returns an empty document with every list of its kind present.
func NewDocument(kind Kind, id string) *Document {
	d := &Document{
		Kind:   kind,
		ID:     id,
		Fields: make(map[string]string),
		Sets:   make(map[string][]string),
	}
	for _, f := range SetFieldsOf(kind) {
		d.Sets[f] = []string{}
	}
	return d
}

func (d *Document) Field(name string) string {
	return d.Fields[name]
}

func (d *Document) SetField(name, value string) {
	if d.Fields == nil {
		d.Fields = make(map[string]string)
	}
	d.Fields[name] = value
}

func (d *Document) List(name string) IDSet {
	return NewIDSet(d.Sets[name]...)
}

// AddToSet appends member to the named list if absent. Returns true when the
// document changed.
func (d *Document) AddToSet(name, member string) bool {
	set := d.List(name)
	if !set.Add(member) {
		return false
	}
	d.putList(name, set)
	return true
}

// RemoveFromSet drops member from the named list. Returns true when the
// document changed.
func (d *Document) RemoveFromSet(name, member string) bool {
	set := d.List(name)
	if !set.Remove(member) {
		return false
	}
	d.putList(name, set)
	return true
}

func (d *Document) putList(name string, set IDSet) {
	if d.Sets == nil {
		d.Sets = make(map[string][]string)
	}
	d.Sets[name] = set.Slice()
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		Kind:   d.Kind,
		ID:     d.ID,
		Fields: make(map[string]string, len(d.Fields)),
		Sets:   make(map[string][]string, len(d.Sets)),
	}
	for k, v := range d.Fields {
		c.Fields[k] = v
	}
	for k, v := range d.Sets {
		c.Sets[k] = append([]string{}, v...)
	}
	return c
}
