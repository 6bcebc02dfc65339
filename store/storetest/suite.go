// Package storetest holds the behaviour every store.Store implementation must show.
package storetest

import (
	"context"
	"time"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
	"github.com/APB2021/student_manager/store"
	"github.com/stretchr/testify/suite"
)

// StoreSuite runs the contract tests against the store returned by Open. Cleanup is called after every test
type StoreSuite struct {
	suite.Suite
	Open	func() (store.Store, func())

	ctx		context.Context
	store	store.Store
	cleanup	func()
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, s.cleanup = s.Open()
}

func (s *StoreSuite) TearDownTest() {
	s.cleanup()
}

// NewStudent returns a valid student of the given group
func NewStudent(name, surname, group string) *students.Student {
	return students.New(name, surname, students.Female, time.Date(2003, time.June, 15, 0, 0, 0, 0, time.UTC), "DAM", "2", groups.New(group))
}

func (s *StoreSuite) insertGroups(names ...string) {
	for _, name := range names {
		s.Require().NoError(s.store.InsertGroup(s.ctx, groups.New(name)))
	}
}

func (s *StoreSuite) insertStudent(name, surname, group string) *students.Student {
	student := NewStudent(name, surname, group)
	s.Require().NoError(s.store.InsertStudent(s.ctx, student))
	return student
}

func (s *StoreSuite) TestInsertAndGetStudent() {
	s.insertGroups("A")
	inserted := s.insertStudent("ana", "lopez", "A")
	s.NotZero(inserted.NIA)
	s.NotZero(inserted.Group.Number)
	got, err := s.store.GetStudent(s.ctx, inserted.NIA)
	s.Require().NoError(err)
	s.Equal(inserted.NIA, got.NIA)
	s.Equal("ANA", got.Name)
	s.Equal("LOPEZ", got.Surname)
	s.Equal(students.Female, got.Gender)
	s.Equal("15-06-2003", students.FormatBirthDate(got.BirthDate))
	s.Equal("DAM", got.Cycle)
	s.Equal("2", got.Course)
	s.Require().NotNil(got.Group)
	s.Equal("A", got.Group.Name)
	s.Equal(inserted.Group.Number, got.Group.Number)
}

func (s *StoreSuite) TestInsertStudentUnknownGroup() {
	err := s.store.InsertStudent(s.ctx, NewStudent("ana", "lopez", "Z"))
	s.ErrorIs(err, store.ErrGroupNotFound)
	list, err := s.store.ListStudents(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *StoreSuite) TestNIAsAreUniqueAndOrdered() {
	s.insertGroups("A", "B")
	first := s.insertStudent("ana", "lopez", "A")
	second := s.insertStudent("luis", "perez", "B")
	third := s.insertStudent("eva", "ruiz", "A")
	s.Less(first.NIA, second.NIA)
	s.Less(second.NIA, third.NIA)
	list, err := s.store.ListStudents(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]int{first.NIA, second.NIA, third.NIA}, []int{list[0].NIA, list[1].NIA, list[2].NIA})
}

func (s *StoreSuite) TestGetMissingStudent() {
	_, err := s.store.GetStudent(s.ctx, 424242)
	s.ErrorIs(err, store.ErrStudentNotFound)
}

func (s *StoreSuite) TestDuplicateGroup() {
	s.insertGroups("A")
	err := s.store.InsertGroup(s.ctx, groups.New("a"))
	s.ErrorIs(err, store.ErrGroupExists)
	list, err := s.store.ListGroups(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *StoreSuite) TestGroups() {
	s.insertGroups("C", "A", "B")
	list, err := s.store.ListGroups(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("A", list[0].Name)
	s.Equal("B", list[1].Name)
	s.Equal("C", list[2].Name)
	g, err := s.store.GetGroup(s.ctx, "b")
	s.Require().NoError(err)
	s.Equal("B", g.Name)
	_, err = s.store.GetGroup(s.ctx, "Z")
	s.ErrorIs(err, store.ErrGroupNotFound)

	ensured, err := s.store.EnsureGroup(s.ctx, "B")
	s.Require().NoError(err)
	s.Equal(g.Number, ensured.Number)
	created, err := s.store.EnsureGroup(s.ctx, "D")
	s.Require().NoError(err)
	s.Equal("D", created.Name)
	list, err = s.store.ListGroups(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 4)
}

func (s *StoreSuite) TestUpdateStudentName() {
	s.insertGroups("A")
	student := s.insertStudent("ana", "lopez", "A")
	s.Require().NoError(s.store.UpdateStudentName(s.ctx, student.NIA, "ANABEL"))
	got, err := s.store.GetStudent(s.ctx, student.NIA)
	s.Require().NoError(err)
	s.Equal("ANABEL", got.Name)
	s.ErrorIs(s.store.UpdateStudentName(s.ctx, student.NIA+100, "X"), store.ErrStudentNotFound)
}

func (s *StoreSuite) TestDeleteStudent() {
	s.insertGroups("A")
	student := s.insertStudent("ana", "lopez", "A")
	s.Require().NoError(s.store.DeleteStudent(s.ctx, student.NIA))
	_, err := s.store.GetStudent(s.ctx, student.NIA)
	s.ErrorIs(err, store.ErrStudentNotFound)
	s.ErrorIs(s.store.DeleteStudent(s.ctx, student.NIA), store.ErrStudentNotFound)
}

func (s *StoreSuite) TestDeleteStudentsByGroup() {
	s.insertGroups("A", "B")
	s.insertStudent("ana", "lopez", "A")
	s.insertStudent("eva", "ruiz", "A")
	kept := s.insertStudent("luis", "perez", "B")

	removed, err := s.store.DeleteStudentsByGroup(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal(2, removed)
	list, err := s.store.ListStudents(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(kept.NIA, list[0].NIA)
	// the group itself survives
	_, err = s.store.GetGroup(s.ctx, "A")
	s.NoError(err)

	removed, err = s.store.DeleteStudentsByGroup(s.ctx, "A")
	s.Require().NoError(err)
	s.Zero(removed)
	_, err = s.store.DeleteStudentsByGroup(s.ctx, "Z")
	s.ErrorIs(err, store.ErrGroupNotFound)
}

func (s *StoreSuite) TestListStudentsByGroup() {
	s.insertGroups("A", "B")
	a1 := s.insertStudent("ana", "lopez", "A")
	s.insertStudent("luis", "perez", "B")
	a2 := s.insertStudent("eva", "ruiz", "A")
	list, err := s.store.ListStudentsByGroup(s.ctx, "a")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(a1.NIA, list[0].NIA)
	s.Equal(a2.NIA, list[1].NIA)
	for _, student := range list {
		s.Equal("A", student.GroupName())
	}
	_, err = s.store.ListStudentsByGroup(s.ctx, "Z")
	s.ErrorIs(err, store.ErrGroupNotFound)
}

func (s *StoreSuite) TestChangeStudentGroup() {
	s.insertGroups("A", "B")
	student := s.insertStudent("ana", "lopez", "A")
	s.ErrorIs(s.store.ChangeStudentGroup(s.ctx, student.NIA, "A"), store.ErrSameGroup)
	s.ErrorIs(s.store.ChangeStudentGroup(s.ctx, student.NIA, "Z"), store.ErrGroupNotFound)
	s.ErrorIs(s.store.ChangeStudentGroup(s.ctx, student.NIA+100, "B"), store.ErrStudentNotFound)
	s.Require().NoError(s.store.ChangeStudentGroup(s.ctx, student.NIA, "b"))
	got, err := s.store.GetStudent(s.ctx, student.NIA)
	s.Require().NoError(err)
	s.Equal("B", got.GroupName())
}
