package model

// Role is a user's membership category within a course.
type Role string

const (
	RoleInstructor  Role = "Instructor"
	RoleStudent     Role = "Student"
	RoleNotEnrolled Role = "NotEnrolled"
)

func (r Role) IsEnrolled() bool {
	return r == RoleInstructor || r == RoleStudent
}
