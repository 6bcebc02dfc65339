package groups

import (
	"errors"
	"strings"
)

var ErrInvalidName = errors.New("group name must be a single letter")

// group of students (a cohort). The number is assigned by the backend the group is stored in
type Group struct {
	Number	int		`json:"numeroGrupo"`
	Name	string	`json:"nombreGrupo"`
}

// create a new group with the given name. The name is normalized but not validated
func New(name string) *Group {
	return &Group{Name: NormalizeName(name)}
}

// trim and upper-case the given group name
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// validate that the given (already normalized) name is a single letter, as required on manual entry
func ValidateName(name string) error {
	if len(name) != 1 || name[0] < 'A' || name[0] > 'Z' {
		return ErrInvalidName
	}
	return nil
}

func (g *Group) String() string {
	return g.Name
}
