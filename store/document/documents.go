package document

import (
	"encoding/binary"

	"github.com/APB2021/student_manager/db"
	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
)

const (
	StudentsBucket	= "alumnos"
	GroupsBucket	= "grupos"

	// counter ids
	NIACounter		= "alumno_nia"
	GroupCounter	= "grupo_numero"

	// the NIA counter is set to this value when there are no students, so the first NIA is base + 1
	niaBase	= 1000
)

// a student as stored in the students bucket. The group is referenced by name
type studentDocument struct {
	db.ABucketElement
	NIA			int		`json:"nia"`
	Name		string	`json:"nombre"`
	Surname		string	`json:"apellidos"`
	Gender		string	`json:"genero"`
	BirthDate	string	`json:"fechaNacimiento"`
	Cycle		string	`json:"ciclo"`
	Course		string	`json:"curso"`
	GroupName	string	`json:"nombreGrupo"`
}

func (d *studentDocument) Key() []byte {
	return itob(d.NIA)
}

func (d *studentDocument) Bucket() []byte {
	return []byte(StudentsBucket)
}

type groupDocument struct {
	db.ABucketElement
	Number	int		`json:"numeroGrupo"`
	Name	string	`json:"nombreGrupo"`
}

func (d *groupDocument) Key() []byte {
	return []byte(d.Name)
}

func (d *groupDocument) Bucket() []byte {
	return []byte(GroupsBucket)
}

// big endian keys keep the students bucket sorted by NIA
func itob(v int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}

func newStudentDocument(s *students.Student) *studentDocument {
	return &studentDocument{
		NIA:		s.NIA,
		Name:		s.Name,
		Surname:	s.Surname,
		Gender:		string(s.Gender),
		BirthDate:	students.FormatBirthDate(s.BirthDate),
		Cycle:		s.Cycle,
		Course:		s.Course,
		GroupName:	s.GroupName(),
	}
}

// convert the document to a student, resolving its group from the given groups. Unknown groups are kept by name
func (d *studentDocument) toStudent(groupsByName map[string]*groups.Group) (*students.Student, error) {
	birthDate, err := students.ParseBirthDate(d.BirthDate)
	if err != nil {
		return nil, err
	}
	group, ok := groupsByName[d.GroupName]
	if !ok {
		group = groups.New(d.GroupName)
	}
	return &students.Student{
		NIA:		d.NIA,
		Name:		d.Name,
		Surname:	d.Surname,
		Gender:		students.Gender(d.Gender),
		BirthDate:	birthDate,
		Cycle:		d.Cycle,
		Course:		d.Course,
		Group:		&groups.Group{Number: group.Number, Name: group.Name},
	}, nil
}

func (d *groupDocument) toGroup() *groups.Group {
	return &groups.Group{Number: d.Number, Name: d.Name}
}
