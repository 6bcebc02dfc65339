// Package console implements the interactive menu over a store.Store.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/APB2021/student_manager/records"
	"github.com/APB2021/student_manager/store"
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithFields(logrus.Fields{"component": "console"})

const menu = `---- Menú Principal -------------------------------------------
1. Insertar nuevo alumno.
2. Insertar nuevo grupo.
3. Mostrar todos los alumnos.
4. Guardar todos los alumnos en un fichero de texto.
5. Leer alumnos de un fichero de texto y guardarlos en la BD.
6. Modificar el nombre de un alumno por su NIA.
7. Eliminar un alumno a partir de su NIA.
8. Eliminar los alumnos del grupo indicado.
9. Guardar grupos y alumnos en un archivo XML.
10. Leer un archivo XML de grupos y guardar los datos en la BD.
11. Mostrar todos los alumnos del grupo elegido.
12. Mostrar todos los datos de un alumno por su NIA.
13. Cambiar de grupo al alumno que elija el usuario.
14. Guardar el grupo que elija el usuario en un fichero XML.
0. Salir.
---------------------------------------------------------------`

// a menu operation. The returned bool tells if the operation succeeded, the error is only set when the input was
// closed (or the menu interrupted) while the operation was reading from it
type operation func(ctx context.Context) (bool, error)

// returned by prompt when the menu's context is done while waiting for input
var errInterrupted = errors.New("menu interrupted")

type inputLine struct {
	text	string
	err		error
}

// interactive menu reading from in and writing to out. Run must not be called concurrently
type View struct {
	store		store.Store
	records		*records.Records
	in			*bufio.Scanner
	out			io.Writer
	operations	map[int]operation
	lines		chan inputLine
	done		<-chan struct{}
}

func New(st store.Store, rec *records.Records, in io.Reader, out io.Writer) *View {
	v := &View{
		store:		st,
		records:	rec,
		in:			bufio.NewScanner(in),
		out:		out,
	}
	v.operations = map[int]operation{
		1:	v.insertStudent,
		2:	v.insertGroup,
		3:	v.listAllStudents,
		4:	v.exportText,
		5:	v.importText,
		6:	v.renameStudent,
		7:	v.deleteStudent,
		8:	v.deleteStudentsByGroup,
		9:	v.exportXML,
		10:	v.importXML,
		11:	v.listStudentsByGroup,
		12:	v.selectStudent,
		13:	v.changeStudentGroup,
		14:	v.exportGroupXML,
	}
	return v
}

// send the input lines to lines until the input ends or stop is closed. The input error (io.EOF at the end of the
// input) is sent last
func (v *View) readLines(lines chan<- inputLine, stop <-chan struct{}) {
	defer close(lines)
	send := func(line inputLine) bool {
		select {
		case lines <- line:
			return true
		case <-stop:
			return false
		}
	}
	for v.in.Scan() {
		if !send(inputLine{text: v.in.Text()}) {
			return
		}
	}
	err := v.in.Err()
	if err == nil {
		err = io.EOF
	}
	send(inputLine{err: err})
}

// show the menu and run the selected operations until 0 is selected, the input is closed or the context is done.
// A done context also ends a prompt that is waiting for input
func (v *View) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	v.lines, v.done = make(chan inputLine), ctx.Done()
	go v.readLines(v.lines, stop)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v.println(menu)
		line, err := v.prompt("Selecciona una opción: ")
		if err != nil {
			return v.inputClosed(ctx, err)
		}
		option, err := strconv.Atoi(line)
		if err != nil {
			v.println("Entrada no válida. Por favor, introduce un número.")
			continue
		}
		if option == 0 {
			v.println("Finalizando el programa...")
			return nil
		}
		op, ok := v.operations[option]
		if !ok {
			v.println("Opción no válida. Inténtalo de nuevo.")
			continue
		}
		succeeded, err := op(ctx)
		if err != nil {
			return v.inputClosed(ctx, err)
		}
		logger.Debugf("option %d finished, succeeded = %v", option, succeeded)
	}
}

// the end of the input ends the menu like selecting 0 does
func (v *View) inputClosed(ctx context.Context, err error) error {
	switch err {
	case io.EOF:
		logger.Info("input closed, leaving the menu")
		return nil
	case errInterrupted:
		logger.Info("menu interrupted while waiting for input")
		return ctx.Err()
	}
	return err
}

func (v *View) println(a ...interface{}) {
	_, _ = fmt.Fprintln(v.out, a...)
}

func (v *View) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(v.out, format, a...)
}

// print the given prompt and return the next trimmed input line. io.EOF is returned when the input is closed and
// errInterrupted when the menu's context is done first
func (v *View) prompt(text string) (string, error) {
	v.printf("%s", text)
	select {
	case line, ok := <-v.lines:
		if !ok {
			return "", io.EOF
		}
		if line.err != nil {
			return "", line.err
		}
		return strings.TrimSpace(line.text), nil
	case <-v.done:
		return "", errInterrupted
	}
}

// prompt for a number. A non numeric answer is reported and ok is false
func (v *View) promptInt(text string) (number int, ok bool, err error) {
	line, err := v.prompt(text)
	if err != nil {
		return 0, false, err
	}
	number, err = strconv.Atoi(line)
	if err != nil {
		v.println("❌ Debes introducir un número válido.")
		return 0, false, nil
	}
	return number, true, nil
}

// ask a yes (S) or no (N) question. Anything but S is a no
func (v *View) confirm(question string) (bool, error) {
	answer, err := v.prompt(fmt.Sprintf("%s (S/N): ", question))
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "S"), nil
}

// a records.ConfirmFunc asking the user before overwriting a file. An input error is kept in errp and counts as a no
func (v *View) overwriteConfirmation(errp *error) records.ConfirmFunc {
	return func(path string) bool {
		ok, err := v.confirm(fmt.Sprintf("El fichero %s ya existe. ¿Desea sobrescribirlo?", path))
		if err != nil {
			*errp = err
			return false
		}
		return ok
	}
}
