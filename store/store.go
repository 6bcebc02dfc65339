// Package store defines the data-access contract shared by every backend.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
)

var (
	ErrStudentNotFound	= errors.New("student not found")
	ErrGroupNotFound	= errors.New("group not found")
	ErrGroupExists		= errors.New("group already exists")
	ErrSameGroup		= errors.New("student already belongs to that group")
)

// backend names, as used in the configuration
const (
	Relational	= "relational"
	Document	= "document"
	Mongo		= "mongo"
)

// Store is implemented once per storage technology.
type Store interface {
	// persist the given student, whose group must already exist, and assign its NIA
	InsertStudent(ctx context.Context, s *students.Student) error
	// return the student with the given NIA
	GetStudent(ctx context.Context, nia int) (*students.Student, error)
	// return all students ordered by NIA
	ListStudents(ctx context.Context) ([]*students.Student, error)
	// return the students of the named group ordered by NIA
	ListStudentsByGroup(ctx context.Context, groupName string) ([]*students.Student, error)
	// set the name of the student with the given NIA
	UpdateStudentName(ctx context.Context, nia int, name string) error
	// move the student with the given NIA to the named group
	ChangeStudentGroup(ctx context.Context, nia int, groupName string) error
	// delete the student with the given NIA
	DeleteStudent(ctx context.Context, nia int) error
	// delete all students of the named group and return how many were removed. The group itself is kept
	DeleteStudentsByGroup(ctx context.Context, groupName string) (int, error)
	// persist the given group and assign its number
	InsertGroup(ctx context.Context, g *groups.Group) error
	// return the group with the given name
	GetGroup(ctx context.Context, name string) (*groups.Group, error)
	// return the group with the given name, creating it first if it doesn't exist
	EnsureGroup(ctx context.Context, name string) (*groups.Group, error)
	// return all groups ordered by name
	ListGroups(ctx context.Context) ([]*groups.Group, error)
	// release the backend connection
	Close() error
}

// sort the given students by NIA in place
func SortByNIA(list []*students.Student) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].NIA < list[j].NIA
	})
}

// sort the given groups by name in place
func SortByName(list []*groups.Group) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
}

// validate a student before insertion, the check every backend runs first
func CheckInsertable(s *students.Student) error {
	if s == nil {
		return errors.New("nil student")
	}
	if s.Group == nil {
		return ErrGroupNotFound
	}
	return s.Validate()
}
