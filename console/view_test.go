package console

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/APB2021/student_manager/db"
	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/records"
	"github.com/APB2021/student_manager/store"
	"github.com/APB2021/student_manager/store/document"
	"github.com/APB2021/student_manager/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store	store.Store
	records	*records.Records
	out		*bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	m, cleanup := db.InitDbForTest(document.StudentsBucket, document.GroupsBucket)
	t.Cleanup(cleanup)
	st, err := document.New(m)
	require.NoError(t, err)
	return &fixture{store: st, records: records.New(st, t.TempDir()), out: &bytes.Buffer{}}
}

// run the menu over the given input lines and return the output
func (f *fixture) run(t *testing.T, lines ...string) string {
	f.out.Reset()
	input := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, New(f.store, f.records, input, f.out).Run(context.Background()))
	return f.out.String()
}

// groups A and B with students 1001 (A), 1002 (B) and 1003 (A)
func (f *fixture) populate(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"A", "B"} {
		require.NoError(t, f.store.InsertGroup(ctx, groups.New(name)))
	}
	for _, s := range [][]string{{"ana", "lopez", "A"}, {"luis", "perez", "B"}, {"eva", "ruiz", "A"}} {
		require.NoError(t, f.store.InsertStudent(ctx, storetest.NewStudent(s[0], s[1], s[2])))
	}
}

func (f *fixture) count(t *testing.T) int {
	list, err := f.store.ListStudents(context.Background())
	require.NoError(t, err)
	return len(list)
}

func TestExitOnZero(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "0", "1")
	assert.Equal(t, 1, strings.Count(out, "Menú Principal"))
	assert.Contains(t, out, "Finalizando el programa...")
}

func TestInputClosedEndsMenu(t *testing.T) {
	f := newFixture(t)
	out := f.run(t)
	assert.Contains(t, out, "Menú Principal")
	assert.NotContains(t, out, "Finalizando")
}

func TestInvalidInputReprompts(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "abc", "99", "", "0")
	assert.Equal(t, 4, strings.Count(out, "Selecciona una opción"))
	assert.Equal(t, 2, strings.Count(out, "Entrada no válida"))
	assert.Contains(t, out, "Opción no válida")
}

func TestCanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(f.store, f.records, strings.NewReader("0\n"), f.out).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// an output that reports when the menu asks for an option
type promptSignal struct {
	once		sync.Once
	prompted	chan struct{}
}

func (p *promptSignal) Write(data []byte) (int, error) {
	if strings.Contains(string(data), "Selecciona una opción") {
		p.once.Do(func() { close(p.prompted) })
	}
	return len(data), nil
}

func TestCanceledWhileWaitingForInput(t *testing.T) {
	f := newFixture(t)
	in, inWriter := io.Pipe()
	defer inWriter.Close()
	out := &promptSignal{prompted: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errs := make(chan error, 1)
	go func() {
		errs <- New(f.store, f.records, in, out).Run(ctx)
	}()
	select {
	case <-out.prompted:
	case <-time.After(5 * time.Second):
		t.Fatal("the menu never asked for an option")
	}
	cancel()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("the menu kept waiting for input after the context was canceled")
	}
}

func TestInsertGroupAndStudent(t *testing.T) {
	f := newFixture(t)
	out := f.run(t,
		"2", "ab", "a",
		"2", "A",
		"1", "ana", "lopez", "x", "f", "15-06-2003", "dam", "2", "7", "a",
		"0")
	assert.Contains(t, out, "El nombre del grupo debe ser una sola letra.")
	assert.Contains(t, out, "✅ Grupo insertado correctamente.")
	assert.Contains(t, out, "El grupo 'A' ya existe.")
	assert.Contains(t, out, "Respuesta no válida. Introduce 'M' o 'F'.")
	assert.Contains(t, out, "El nombre del grupo no es válido.")
	assert.Contains(t, out, "✅ Alumno insertado correctamente con NIA 1001.")
	s, err := f.store.GetStudent(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, "ANA", s.Name)
	assert.Equal(t, "A", s.GroupName())
}

func TestCaptureWithUnknownGroup(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "1", "ana", "lopez", "F", "15-06-2003", "DAM", "1", "Z", "0")
	assert.Contains(t, out, "El grupo no existe en la BD")
	assert.Contains(t, out, "No se pudo crear el alumno.")
	assert.Zero(t, f.count(t))
}

func TestCaptureDateIsAskedOnce(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "1", "ana", "lopez", "F", "31-02-2003", "0")
	assert.Contains(t, out, "Formato de fecha inválido.")
	assert.Contains(t, out, "Finalizando el programa...")
	assert.Zero(t, f.count(t))
}

func TestListAllStudents(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "3", "0")
	assert.Contains(t, out, "No hay alumnos registrados.")

	f.populate(t)
	out = f.run(t, "3", "0")
	assert.Contains(t, out, "NIA: 1001\nNombre: ANA\nApellidos: LOPEZ\nGénero: F\nFecha de nacimiento: 15-06-2003")
	assert.Contains(t, out, "NIA: 1003")
}

func TestSelectStudent(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	out := f.run(t, "12", "abc", "5", "1002", "0")
	assert.Contains(t, out, "NIA: 1001, Nombre: ANA")
	assert.Contains(t, out, "Debes introducir un número válido.")
	assert.Contains(t, out, "El NIA seleccionado no está en la lista.")
	assert.Contains(t, out, "Apellidos: PEREZ")
	assert.NotContains(t, out, "Apellidos: LOPEZ")
}

func TestSelectStudentZeroExits(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	out := f.run(t, "12", "0", "0")
	assert.Contains(t, out, "Saliendo sin seleccionar un alumno.")
	assert.NotContains(t, out, "Apellidos:")
	assert.Contains(t, out, "Finalizando el programa...")
}

func TestRenameStudent(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	out := f.run(t, "6", "1001", "anabel", "6", "4242", "x", "6", "1001", "", "0")
	assert.Contains(t, out, "✅ Nombre del alumno modificado correctamente.")
	assert.Contains(t, out, "No se pudo modificar el nombre del alumno.")
	assert.Contains(t, out, "El nombre no puede estar vacío.")
	s, err := f.store.GetStudent(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, "ANABEL", s.Name)
}

func TestDeleteStudent(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	out := f.run(t, "7", "1002", "7", "1002", "0")
	assert.Contains(t, out, "✅ Alumno con NIA 1002 eliminado correctamente.")
	assert.Contains(t, out, "No se encontró un alumno con el NIA proporcionado.")
	assert.Equal(t, 2, f.count(t))
}

func TestDeleteStudentsByGroup(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	out := f.run(t, "8", "a", "n", "0")
	assert.Contains(t, out, "Operación cancelada por el usuario.")
	assert.Equal(t, 3, f.count(t))

	out = f.run(t, "8", "a", "s", "8", "A", "S", "0")
	assert.Contains(t, out, "✅ Se han eliminado 2 alumnos del grupo 'A'.")
	assert.Contains(t, out, "El grupo 'A' no tiene alumnos.")
	list, err := f.store.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].GroupName())
}

func TestChangeStudentGroup(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	out := f.run(t, "13", "1001", "A", "13", "1001", "Z", "13", "1001", "b", "0")
	assert.Contains(t, out, "El alumno ya pertenece al grupo 'A'.")
	assert.Contains(t, out, "El grupo especificado no existe.")
	assert.Contains(t, out, "✅ El grupo del alumno ha sido cambiado exitosamente.")
	s, err := f.store.GetStudent(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, "B", s.GroupName())
}

func TestListStudentsByGroup(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	out := f.run(t, "11", "b", "11", "q", "0")
	assert.Contains(t, out, "--- Alumnos del grupo \"B\" ---")
	assert.Contains(t, out, "Apellidos: PEREZ")
	assert.NotContains(t, out, "Apellidos: LOPEZ")
	assert.Contains(t, out, "El grupo \"Q\" no existe.")
}

func TestTextExportAndImport(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "4", "0")
	assert.Contains(t, out, "No hay alumnos registrados para guardar en el fichero.")

	f.populate(t)
	out = f.run(t, "4", "4", "n", "0")
	assert.Contains(t, out, "✅ 3 alumnos guardados correctamente")
	assert.Contains(t, out, "ya existe. ¿Desea sobrescribirlo? (S/N)")
	assert.Contains(t, out, "Operación cancelada. El fichero no se sobrescribirá.")

	out = f.run(t, "5", "0")
	assert.Contains(t, out, "✅ 3 alumnos leídos e insertados correctamente")
	assert.Equal(t, 6, f.count(t))
}

func TestXMLExportAndImport(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "9", "10", "0")
	assert.Contains(t, out, "No hay grupos registrados para guardar.")
	assert.Contains(t, out, "El archivo XML no existe")

	f.populate(t)
	out = f.run(t, "9", "10", "0")
	assert.Contains(t, out, "✅ 2 grupos guardados correctamente")
	assert.Contains(t, out, "3 alumnos guardados en la base de datos")
	assert.Equal(t, 6, f.count(t))
}

func TestExportGroupXML(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	out := f.run(t, "14", "b", "14", "B", "n", "14", "x", "0")
	assert.Contains(t, out, "El archivo XML del grupo 'B' se ha guardado correctamente")
	assert.Contains(t, out, "Operación cancelada. El fichero no se sobrescribirá.")
	assert.Contains(t, out, "El grupo 'X' no existe.")
	_, err := os.Stat(filepath.Join(f.records.Dir(), records.GroupXMLFileName("B")))
	assert.NoError(t, err)
}
