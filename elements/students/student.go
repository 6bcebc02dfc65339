package students

import (
	"fmt"
	"strings"
	"time"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/go-playground/validator/v10"
)

// student record. NIA is the primary key and is assigned by the backend the student is stored in
type Student struct {
	NIA			int				`json:"nia"`
	Name		string			`json:"nombre" validate:"required"`
	Surname		string			`json:"apellidos" validate:"required"`
	Gender		Gender			`json:"genero" validate:"oneof=M F"`
	BirthDate	time.Time		`json:"fechaNacimiento" validate:"required"`
	Cycle		string			`json:"ciclo" validate:"required"`
	Course		string			`json:"curso" validate:"required"`
	Group		*groups.Group	`json:"grupo" validate:"required"`
}

var validate = validator.New()

// create a new student. Text fields are normalized (trimmed and upper-cased)
func New(name, surname string, gender Gender, birthDate time.Time, cycle, course string, group *groups.Group) *Student {
	s := &Student{
		Name:		name,
		Surname:	surname,
		Gender:		gender,
		BirthDate:	birthDate,
		Cycle:		cycle,
		Course:		course,
		Group:		group,
	}
	s.Normalize()
	return s
}

// trim and upper-case all text fields of the student
func (s *Student) Normalize() {
	s.Name = NormalizeText(s.Name)
	s.Surname = NormalizeText(s.Surname)
	s.Cycle = NormalizeText(s.Cycle)
	s.Course = NormalizeText(s.Course)
	if s.Group != nil {
		s.Group.Name = groups.NormalizeName(s.Group.Name)
	}
}

// returns the name of the student's group or NoGroup if the group is not resolved
func (s *Student) GroupName() string {
	if s.Group == nil {
		return NoGroup
	}
	return s.Group.Name
}

// validate the student before it is persisted
func (s *Student) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid student: %v", err)
	}
	return nil
}

func (s *Student) String() string {
	return fmt.Sprintf("%d %s %s (%s)", s.NIA, s.Name, s.Surname, s.GroupName())
}

func NormalizeText(text string) string {
	return strings.ToUpper(strings.TrimSpace(text))
}
