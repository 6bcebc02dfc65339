package relational

import (
	"time"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
)

type groupRow struct {
	Number	int		`gorm:"column:numero_grupo;primaryKey;autoIncrement"`
	Name	string	`gorm:"column:nombre_grupo;size:50;not null;uniqueIndex"`
}

func (groupRow) TableName() string {
	return "grupos"
}

func (r *groupRow) toGroup() *groups.Group {
	return &groups.Group{Number: r.Number, Name: r.Name}
}

type studentRow struct {
	NIA			int			`gorm:"column:nia;primaryKey;autoIncrement"`
	Name		string		`gorm:"column:nombre;size:100;not null"`
	Surname		string		`gorm:"column:apellidos;size:150;not null"`
	Gender		string		`gorm:"column:genero;size:1;not null"`
	BirthDate	time.Time	`gorm:"column:fecha_nacimiento;type:date;not null"`
	Cycle		string		`gorm:"column:ciclo;size:50;not null"`
	Course		string		`gorm:"column:curso;size:20;not null"`
	GroupNumber	int			`gorm:"column:numero_grupo;not null;index"`
	Group		groupRow	`gorm:"foreignKey:GroupNumber;references:Number;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (studentRow) TableName() string {
	return "alumnos"
}

func (r *studentRow) toStudent() *students.Student {
	birthDate := r.BirthDate
	return &students.Student{
		NIA:		r.NIA,
		Name:		r.Name,
		Surname:	r.Surname,
		Gender:		students.Gender(r.Gender),
		BirthDate:	time.Date(birthDate.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC),
		Cycle:		r.Cycle,
		Course:		r.Course,
		Group:		r.Group.toGroup(),
	}
}
