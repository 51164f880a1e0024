package model

import "fmt"

/*

Course is a class users enroll in

UUID: primary key, generated at creation
Name, Term, Description: display fields
StudentList: users enrolled as students, mirrors User.StudentCourseList
InstructorList: users teaching the course, mirrors User.InstructorCourseList
*/
type Course struct {
	UUID           string `json:"uuid"`
	Name           string `json:"name"`
	Term           string `json:"term"`
	Description    string `json:"description"`
	StudentList    IDSet  `json:"studentList"`
	InstructorList IDSet  `json:"instructorList"`
}

func (c *Course) ToDocument() *Document {
	d := NewDocument(KindCourse, c.UUID)
	d.SetField(FieldName, c.Name)
	d.SetField(FieldTerm, c.Term)
	d.SetField(FieldDescription, c.Description)
	d.putList(ListStudents, c.StudentList)
	d.putList(ListInstructors, c.InstructorList)
	return d
}

func CourseFromDocument(d *Document) (*Course, error) {
	if d.Kind != KindCourse {
		return nil, fmt.Errorf("document %s is a %s, not a course", d.ID, d.Kind)
	}
	return &Course{
		UUID:           d.ID,
		Name:           d.Field(FieldName),
		Term:           d.Field(FieldTerm),
		Description:    d.Field(FieldDescription),
		StudentList:    d.List(ListStudents),
		InstructorList: d.List(ListInstructors),
	}, nil
}
