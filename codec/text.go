// Package codec converts students and groups to and from the delimited text and XML file formats.
package codec

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
)

// first line of every text file
const TextHeader = "NIA,Nombre,Apellidos,Género,Fecha Nacimiento,Ciclo,Curso,Nombre del Grupo"

// number of fields of a text line
const textFields = 8

// longest line that is decoded, longer ones are skipped
const maxLineLength = 64 * 1024

// bytes of a skipped long line kept in its LineError
const lineErrorTextLength = 64

var (
	ErrFieldCount	= fmt.Errorf("a line must have exactly %d fields", textFields)
	ErrLineTooLong	= fmt.Errorf("a line can't be longer than %d bytes", maxLineLength)
)

// a text line that could not be decoded
type LineError struct {
	Line	int
	Text	string
	Err		error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (\"%s\"): %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// encode the given student as a single text line, without the line break
func EncodeLine(s *students.Student) (string, error) {
	var line strings.Builder
	w := csv.NewWriter(&line)
	if err := w.Write([]string{
		strconv.Itoa(s.NIA),
		s.Name,
		s.Surname,
		string(s.Gender),
		students.FormatBirthDate(s.BirthDate),
		s.Cycle,
		s.Course,
		s.GroupName(),
	}); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimRight(line.String(), "\n"), nil
}

// decode a text line into a student. The NIA is kept when it is a number and ignored otherwise, as the store
// assigns a new one on insert
func DecodeLine(line string) (*students.Student, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrFieldCount
		}
		return nil, err
	}
	if len(fields) != textFields {
		return nil, ErrFieldCount
	}
	gender, err := students.ParseGender(fields[3])
	if err != nil {
		return nil, err
	}
	birthDate, err := students.ParseBirthDate(fields[4])
	if err != nil {
		return nil, err
	}
	groupName := groups.NormalizeName(fields[7])
	if groupName == "" {
		return nil, groups.ErrInvalidName
	}
	s := students.New(fields[1], fields[2], gender, birthDate, fields[5], fields[6], groups.New(groupName))
	if nia, err := strconv.Atoi(strings.TrimSpace(fields[0])); err == nil {
		s.NIA = nia
	}
	return s, nil
}

// write the header followed by one line per student
func WriteText(w io.Writer, list []*students.Student) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, TextHeader); err != nil {
		return err
	}
	for _, s := range list {
		line, err := EncodeLine(s)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// read the next line without its line break. A line longer than maxLineLength is consumed whole but only its
// first maxLineLength bytes are kept and tooLong is set. io.EOF is returned once there are no more lines
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	var (
		buf		[]byte
		total	int
	)
	for {
		fragment, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", false, err
		}
		total += len(fragment)
		if room := maxLineLength - len(buf); room > 0 {
			if len(fragment) > room {
				fragment = fragment[:room]
			}
			buf = append(buf, fragment...)
		}
		if !isPrefix {
			return string(buf), total > maxLineLength, nil
		}
	}
}

// read a text file. The first line is the header and is skipped, as are blank lines. Lines that can't be decoded
// are returned as line errors and don't stop the reading
func ReadText(r io.Reader) ([]*students.Student, []*LineError, error) {
	var (
		result		[]*students.Student
		lineErrors	[]*LineError
	)
	reader := bufio.NewReader(r)
	for lineNumber := 1; ; lineNumber++ {
		line, tooLong, err := readLine(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return result, lineErrors, nil
			}
			return nil, nil, err
		}
		if lineNumber == 1 {
			continue
		}
		if tooLong {
			lineErrors = append(lineErrors, &LineError{Line: lineNumber, Text: line[:lineErrorTextLength] + "...", Err: ErrLineTooLong})
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, err := DecodeLine(line)
		if err != nil {
			lineErrors = append(lineErrors, &LineError{Line: lineNumber, Text: line, Err: err})
			continue
		}
		result = append(result, s)
	}
}
