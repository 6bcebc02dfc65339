package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(number int, name string, list ...*students.Student) GroupRecord {
	return GroupRecord{Group: &groups.Group{Number: number, Name: name}, Students: list}
}

func TestEncodeGroupsXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeGroupsXML(&buf, []GroupRecord{
		newRecord(1, "A", newStudent(1001, "juan", "A")),
		newRecord(2, "B"),
	}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "<grupos>")
	assert.Contains(t, out, `<grupo numeroGrupo="1" nombreGrupo="A">`)
	assert.Contains(t, out, `<alumno nia="1001" nombre="JUAN" apellidos="GARCIA" genero="M" fechaNacimiento="09-03-2004" ciclo="DAW" curso="1"></alumno>`)
	assert.Contains(t, out, `<grupo numeroGrupo="2" nombreGrupo="B"></grupo>`)
}

func TestXMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeGroupsXML(&buf, []GroupRecord{
		newRecord(1, "A", newStudent(1001, "juan", "A"), newStudent(1003, "ana", "A")),
		newRecord(2, "B", newStudent(1002, "luis", "B")),
	}))
	records, err := DecodeXML(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Group.Name)
	assert.Equal(t, 1, records[0].Group.Number)
	require.Len(t, records[0].Students, 2)
	assert.Equal(t, "ANA", records[0].Students[1].Name)
	assert.Equal(t, "A", records[0].Students[1].GroupName())
	assert.Equal(t, "09-03-2004", students.FormatBirthDate(records[1].Students[0].BirthDate))
}

func TestSingleGroupXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeGroupXML(&buf, newRecord(3, "C", newStudent(1005, "eva", "C"))))
	assert.Contains(t, buf.String(), `<grupo numeroGrupo="3" nombreGrupo="C">`)
	assert.NotContains(t, buf.String(), "<grupos>")
	records, err := DecodeXML(&buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "C", records[0].Group.Name)
	require.Len(t, records[0].Students, 1)
	assert.Equal(t, 1005, records[0].Students[0].NIA)
}

// older relational exports wrote yyyy-MM-dd dates while everything else uses dd-MM-yyyy. Both are read the same
func TestDecodeXMLAcceptsIsoDates(t *testing.T) {
	input := `<grupos>
	<grupo numeroGrupo="1" nombreGrupo="a">
		<alumno nia="1" nombre="juan" apellidos="garcia" genero="m" fechaNacimiento="2004-03-09" ciclo="daw" curso="1"/>
		<alumno nia="2" nombre="ana" apellidos="ruiz" genero="F" fechaNacimiento="09-03-2004" ciclo="daw" curso="1"/>
	</grupo>
</grupos>`
	records, err := DecodeXML(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records[0].Students, 2)
	assert.True(t, records[0].Students[0].BirthDate.Equal(records[0].Students[1].BirthDate))
	assert.Equal(t, "A", records[0].Group.Name)
	assert.Equal(t, students.Male, records[0].Students[0].Gender)
}

func TestDecodeXMLErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"<alumnos></alumnos>",
		`<grupo nombreGrupo="A"><alumno nombre="X" genero="M" fechaNacimiento="31/12/2000"/></grupo>`,
		`<grupo nombreGrupo="A"><alumno nombre="X" genero="Z" fechaNacimiento="31-12-2000"/></grupo>`,
		`<grupo nombreGrupo=""></grupo>`,
		"<grupos><grupo>",
	} {
		_, err := DecodeXML(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}
