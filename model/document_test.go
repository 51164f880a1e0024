package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentCarriesEveryList(t *testing.T) {
	d := NewDocument(KindUser, "u1")
	for _, f := range SetFieldsOf(KindUser) {
		list, ok := d.Sets[f]
		assert.True(t, ok, f)
		assert.Empty(t, list)
	}
	assert.False(t, IsValidKind(Kind("tag")))
}

func TestDocumentSetMutation(t *testing.T) {
	d := NewDocument(KindCourse, "c1")
	assert.True(t, d.AddToSet(ListStudents, "u1"))
	assert.False(t, d.AddToSet(ListStudents, "u1"))
	assert.True(t, d.AddToSet(ListStudents, "u2"))
	assert.Equal(t, []string{"u1", "u2"}, d.Sets[ListStudents])

	assert.False(t, d.RemoveFromSet(ListInstructors, "u1"))
	assert.True(t, d.RemoveFromSet(ListStudents, "u1"))
	assert.Equal(t, []string{"u2"}, d.Sets[ListStudents])
}

func TestDocumentCloneIsDeep(t *testing.T) {
	d := NewDocument(KindPost, "p1")
	d.SetField(FieldTitle, "i need help")
	d.AddToSet(ListLikers, "u1")

	c := d.Clone()
	c.SetField(FieldTitle, "changed")
	c.AddToSet(ListLikers, "u2")

	assert.Equal(t, "i need help", d.Field(FieldTitle))
	assert.Equal(t, []string{"u1"}, d.Sets[ListLikers])
}

func TestEntityDocumentConversion(t *testing.T) {
	course := &Course{
		UUID:           "c1",
		Name:           "Test Course",
		Term:           "Fall 2020",
		Description:    "wow a description",
		InstructorList: NewIDSet("u1"),
	}
	back, err := CourseFromDocument(course.ToDocument())
	require.NoError(t, err)
	assert.Equal(t, course.Name, back.Name)
	assert.True(t, back.InstructorList.Contains("u1"))
	assert.Equal(t, 0, back.StudentList.Len())

	_, err = UserFromDocument(course.ToDocument())
	assert.Error(t, err)

	comment := &Comment{UUID: "m1", Content: "same here", Post: "p1", Author: "u2"}
	d := comment.ToDocument()
	assert.Equal(t, "p1", d.Field(FieldPost))
	assert.Equal(t, "u2", d.Field(FieldAuthor))
}

func TestRelationTable(t *testing.T) {
	for _, r := range UserRelations() {
		assert.Equal(t, KindUser, r.OwnerKind, r.Kind)
		assert.Contains(t, SetFieldsOf(KindUser), r.ForwardList, r.Kind)
		if r.HasReverse() {
			assert.Contains(t, SetFieldsOf(r.TargetKind), r.ReverseList, r.Kind)
		}
	}

	rel, ok := LookupRelation(RelationStudent)
	require.True(t, ok)
	assert.Equal(t, ListStudents, rel.ReverseList)

	rel, ok = LookupRelation(RelationPostAuthor)
	require.True(t, ok)
	assert.False(t, rel.HasReverse())

	_, ok = LookupRelation(RelationKind("enemy"))
	assert.False(t, ok)
}

func TestErrorMatching(t *testing.T) {
	partial := &PartialAssociationError{
		Relation:   RelationStudent,
		OwnerID:    "u1",
		TargetID:   "c1",
		FailedSide: SideReverse,
		Err:        &StoreUnavailableError{Op: "add_to_set", Err: assert.AnError},
	}
	assert.True(t, IsPartialAssociation(partial))
	assert.True(t, IsStoreUnavailable(partial))
	assert.False(t, IsNotFound(partial))
	assert.Contains(t, partial.Error(), "reverse side failed")

	v := NewValidationError("Missing one of the following parameters", "name", "uuid")
	assert.True(t, IsValidation(v))
	assert.Equal(t, "Missing one of the following parameters: name, uuid", v.Error())
}
