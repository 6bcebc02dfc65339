package mongo

import (
	"time"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
)

type groupDocument struct {
	Number	int		`bson:"numeroGrupo"`
	Name	string	`bson:"nombreGrupo"`
}

func (d *groupDocument) toGroup() *groups.Group {
	return &groups.Group{Number: d.Number, Name: d.Name}
}

// students embed a copy of their group
type studentDocument struct {
	NIA			int				`bson:"nia"`
	Name		string			`bson:"nombre"`
	Surname		string			`bson:"apellidos"`
	Gender		string			`bson:"genero"`
	BirthDate	time.Time		`bson:"fechaNacimiento"`
	Cycle		string			`bson:"ciclo"`
	Course		string			`bson:"curso"`
	Group		groupDocument	`bson:"grupo"`
}

func (d *studentDocument) toStudent() *students.Student {
	birthDate := d.BirthDate.UTC()
	return &students.Student{
		NIA:		d.NIA,
		Name:		d.Name,
		Surname:	d.Surname,
		Gender:		students.Gender(d.Gender),
		BirthDate:	time.Date(birthDate.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC),
		Cycle:		d.Cycle,
		Course:		d.Course,
		Group:		d.Group.toGroup(),
	}
}

type counterDocument struct {
	ID	string	`bson:"_id"`
	Seq	int		`bson:"seq"`
}
