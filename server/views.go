package server

import (
	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
)

// json representation of a student, with the birth date as dd-MM-yyyy
type studentView struct {
	NIA			int		`json:"nia"`
	Name		string	`json:"nombre"`
	Surname		string	`json:"apellidos"`
	Gender		string	`json:"genero"`
	BirthDate	string	`json:"fechaNacimiento"`
	Cycle		string	`json:"ciclo"`
	Course		string	`json:"curso"`
	Group		string	`json:"nombreGrupo"`
}

func newStudentView(s *students.Student) *studentView {
	return &studentView{
		NIA:		s.NIA,
		Name:		s.Name,
		Surname:	s.Surname,
		Gender:		string(s.Gender),
		BirthDate:	students.FormatBirthDate(s.BirthDate),
		Cycle:		s.Cycle,
		Course:		s.Course,
		Group:		s.GroupName(),
	}
}

func newStudentViews(list []*students.Student) []*studentView {
	views := make([]*studentView, 0, len(list))
	for _, s := range list {
		views = append(views, newStudentView(s))
	}
	return views
}

func newGroupViews(list []*groups.Group) []*groups.Group {
	if list == nil {
		return []*groups.Group{}
	}
	return list
}
