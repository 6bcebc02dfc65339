package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
)

// a group together with its students
type GroupRecord struct {
	Group		*groups.Group
	Students	[]*students.Student
}

type xmlStudent struct {
	NIA			int		`xml:"nia,attr"`
	Name		string	`xml:"nombre,attr"`
	Surname		string	`xml:"apellidos,attr"`
	Gender		string	`xml:"genero,attr"`
	BirthDate	string	`xml:"fechaNacimiento,attr"`
	Cycle		string	`xml:"ciclo,attr"`
	Course		string	`xml:"curso,attr"`
}

type xmlGroup struct {
	XMLName		xml.Name		`xml:"grupo"`
	Number		int				`xml:"numeroGrupo,attr"`
	Name		string			`xml:"nombreGrupo,attr"`
	Students	[]xmlStudent	`xml:"alumno"`
}

type xmlGroups struct {
	XMLName	xml.Name	`xml:"grupos"`
	Groups	[]xmlGroup	`xml:"grupo"`
}

func newXMLGroup(record GroupRecord) xmlGroup {
	g := xmlGroup{Number: record.Group.Number, Name: record.Group.Name}
	for _, s := range record.Students {
		g.Students = append(g.Students, xmlStudent{
			NIA:		s.NIA,
			Name:		s.Name,
			Surname:	s.Surname,
			Gender:		string(s.Gender),
			BirthDate:	students.FormatBirthDate(s.BirthDate),
			Cycle:		s.Cycle,
			Course:		s.Course,
		})
	}
	return g
}

func encodeXML(w io.Writer, v interface{}) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// write all the given groups and their students under a <grupos> root
func EncodeGroupsXML(w io.Writer, records []GroupRecord) error {
	doc := xmlGroups{}
	for _, record := range records {
		doc.Groups = append(doc.Groups, newXMLGroup(record))
	}
	return encodeXML(w, doc)
}

// write a single group and its students with <grupo> as the root
func EncodeGroupXML(w io.Writer, record GroupRecord) error {
	return encodeXML(w, newXMLGroup(record))
}

// parse an XML birth date. Besides dd-MM-yyyy, yyyy-MM-dd is accepted since older relational exports wrote it
func ParseXMLBirthDate(s string) (time.Time, error) {
	if date, err := students.ParseBirthDate(s); err == nil {
		return date, nil
	}
	if date, err := time.Parse(students.IsoBirthDateLayout, s); err == nil {
		return date, nil
	}
	return time.Time{}, students.ErrInvalidBirthDate
}

func (g *xmlGroup) toRecord() (GroupRecord, error) {
	group := &groups.Group{Number: g.Number, Name: groups.NormalizeName(g.Name)}
	if group.Name == "" {
		return GroupRecord{}, groups.ErrInvalidName
	}
	record := GroupRecord{Group: group}
	for _, xs := range g.Students {
		gender, err := students.ParseGender(xs.Gender)
		if err != nil {
			return GroupRecord{}, fmt.Errorf("student %d of group %s: %v", xs.NIA, group.Name, err)
		}
		birthDate, err := ParseXMLBirthDate(xs.BirthDate)
		if err != nil {
			return GroupRecord{}, fmt.Errorf("student %d of group %s: %v", xs.NIA, group.Name, err)
		}
		s := students.New(xs.Name, xs.Surname, gender, birthDate, xs.Cycle, xs.Course, group)
		s.NIA = xs.NIA
		record.Students = append(record.Students, s)
	}
	return record, nil
}

// root element name of the given XML document
func rootName(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := dec.Token()
		if err != nil {
			return "", err
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// parse an XML document whose root is either <grupos> or a single <grupo>
func DecodeXML(r io.Reader) ([]GroupRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	root, err := rootName(data)
	if err != nil {
		return nil, fmt.Errorf("invalid XML document: %v", err)
	}
	var parsed []xmlGroup
	switch root {
	case "grupos":
		doc := xmlGroups{}
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		parsed = doc.Groups
	case "grupo":
		doc := xmlGroup{}
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		parsed = []xmlGroup{doc}
	default:
		return nil, fmt.Errorf("unexpected XML root element <%s>", root)
	}
	result := make([]GroupRecord, 0, len(parsed))
	for i := range parsed {
		record, err := parsed[i].toRecord()
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, nil
}
