// Package records implements the file import and export operations on top of any store.Store.
package records

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/APB2021/student_manager/codec"
	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/store"
	"github.com/APB2021/student_manager/util/containers"
	"github.com/dchest/uniuri"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithFields(logrus.Fields{"component": "records"})

const (
	TextFileName	= "alumnos.txt"
	XMLFileName		= "grupos.xml"

	exportDirPerms	= 0755
	exportFilePerms	= 0644
)

var (
	ErrOverwriteDeclined	= errors.New("overwrite declined")
	ErrNoStudents			= errors.New("there are no students")
	ErrNoGroups				= errors.New("there are no groups")
	ErrNothingImported		= errors.New("nothing was imported")
)

// asked before an existing file is overwritten. Returning false leaves the file untouched
type ConfirmFunc func(path string) bool

// result of an import
type Result struct {
	Inserted	int
	Skipped		int
}

// file operations of the students and groups kept in a store. All files are read from and written to dir
type Records struct {
	store	store.Store
	dir		string
}

func New(st store.Store, dir string) *Records {
	return &Records{store: st, dir: dir}
}

func (r *Records) Dir() string {
	return r.dir
}

// file name of the XML export of a single group
func GroupXMLFileName(name string) string {
	return fmt.Sprintf("grupo_%s.xml", groups.NormalizeName(name))
}

func (r *Records) path(name string) string {
	return filepath.Join(r.dir, name)
}

func fileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ask for confirmation before overwriting the given path, if it exists. A nil confirm function always overwrites
func confirmOverwrite(path string, confirm ConfirmFunc) error {
	exists, err := fileExists(path)
	if err != nil {
		return err
	}
	if exists && confirm != nil && !confirm(path) {
		logger.Infof("not overwriting %s", path)
		return ErrOverwriteDeclined
	}
	return nil
}

// write the file at the given path through a temp file in the same dir, so a failed write never leaves a
// truncated file behind
func writeFile(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, exportDirPerms); err != nil {
		return err
	}
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uniuri.New()))
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, exportFilePerms)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()
	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// export all students to the text file and return how many were written
func (r *Records) ExportText(ctx context.Context, confirm ConfirmFunc) (int, error) {
	path := r.path(TextFileName)
	list, err := r.store.ListStudents(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "error listing students")
	}
	if len(list) == 0 {
		return 0, ErrNoStudents
	}
	if err := confirmOverwrite(path, confirm); err != nil {
		return 0, err
	}
	if err := writeFile(path, func(w io.Writer) error {
		return codec.WriteText(w, list)
	}); err != nil {
		return 0, errors.Wrapf(err, "error writing %s", path)
	}
	logger.Infof("exported %d students to %s", len(list), path)
	return len(list), nil
}

// import the students of the text file, creating their groups when missing. Lines that can't be decoded or
// inserted are skipped. ErrNothingImported is returned when no student was inserted
func (r *Records) ImportText(ctx context.Context) (*Result, error) {
	path := r.path(TextFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %s", path)
	}
	defer f.Close()
	list, lineErrors, err := codec.ReadText(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	result := &Result{Skipped: len(lineErrors)}
	for _, lineErr := range lineErrors {
		logger.WithError(lineErr.Err).Warnf("skipping line %d of %s", lineErr.Line, path)
	}
	resolved, unresolved := containers.NewStringSet(), containers.NewStringSet()
	for _, s := range list {
		name := s.GroupName()
		if unresolved.Contains(name) {
			logger.Warnf("skipping student %s %s: group %s can't be resolved", s.Name, s.Surname, name)
			result.Skipped++
			continue
		}
		if !resolved.Contains(name) {
			if _, err := r.store.EnsureGroup(ctx, name); err != nil {
				logger.WithError(err).Warnf("skipping student %s %s: error resolving group %s", s.Name, s.Surname, name)
				unresolved.Add(name)
				result.Skipped++
				continue
			}
			resolved.Add(name)
		}
		if err := r.store.InsertStudent(ctx, s); err != nil {
			logger.WithError(err).Warnf("skipping student %s %s", s.Name, s.Surname)
			result.Skipped++
			continue
		}
		result.Inserted++
	}
	logger.Infof("imported %d students of groups %s from %s, %d skipped", result.Inserted, resolved, path, result.Skipped)
	if result.Inserted == 0 {
		return result, ErrNothingImported
	}
	return result, nil
}

// every group of the store with its students
func (r *Records) groupRecords(ctx context.Context) ([]codec.GroupRecord, error) {
	groupList, err := r.store.ListGroups(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error listing groups")
	}
	result := make([]codec.GroupRecord, 0, len(groupList))
	for _, group := range groupList {
		list, err := r.store.ListStudentsByGroup(ctx, group.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "error listing students of group %s", group.Name)
		}
		result = append(result, codec.GroupRecord{Group: group, Students: list})
	}
	return result, nil
}

// export all groups and their students to the XML file and return the number of groups written
func (r *Records) ExportXML(ctx context.Context) (int, error) {
	path := r.path(XMLFileName)
	groupRecords, err := r.groupRecords(ctx)
	if err != nil {
		return 0, err
	}
	if len(groupRecords) == 0 {
		return 0, ErrNoGroups
	}
	if err := writeFile(path, func(w io.Writer) error {
		return codec.EncodeGroupsXML(w, groupRecords)
	}); err != nil {
		return 0, errors.Wrapf(err, "error writing %s", path)
	}
	logger.Infof("exported %d groups to %s", len(groupRecords), path)
	return len(groupRecords), nil
}

// export a single group and its students to its own XML file and return the path written
func (r *Records) ExportGroupXML(ctx context.Context, name string, confirm ConfirmFunc) (string, error) {
	group, err := r.store.GetGroup(ctx, name)
	if err != nil {
		return "", err
	}
	list, err := r.store.ListStudentsByGroup(ctx, group.Name)
	if err != nil {
		return "", errors.Wrapf(err, "error listing students of group %s", group.Name)
	}
	path := r.path(GroupXMLFileName(group.Name))
	if err := confirmOverwrite(path, confirm); err != nil {
		return "", err
	}
	if err := writeFile(path, func(w io.Writer) error {
		return codec.EncodeGroupXML(w, codec.GroupRecord{Group: group, Students: list})
	}); err != nil {
		return "", errors.Wrapf(err, "error writing %s", path)
	}
	logger.Infof("exported group %s with %d students to %s", group.Name, len(list), path)
	return path, nil
}

// import the groups and students of the XML file. Existing groups are reused by name and missing ones created.
// The first parse or store error aborts the import, keeping what was inserted before it
func (r *Records) ImportXML(ctx context.Context) (*Result, error) {
	path := r.path(XMLFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %s", path)
	}
	defer f.Close()
	groupRecords, err := codec.DecodeXML(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing %s", path)
	}
	result := &Result{}
	for _, record := range groupRecords {
		group, err := r.store.EnsureGroup(ctx, record.Group.Name)
		if err != nil {
			return result, errors.Wrapf(err, "error resolving group %s", record.Group.Name)
		}
		for _, s := range record.Students {
			s.Group = &groups.Group{Number: group.Number, Name: group.Name}
			if err := r.store.InsertStudent(ctx, s); err != nil {
				return result, errors.Wrapf(err, "error inserting student %s %s", s.Name, s.Surname)
			}
			result.Inserted++
		}
	}
	logger.Infof("imported %d groups with %d students from %s", len(groupRecords), result.Inserted, path)
	return result, nil
}
