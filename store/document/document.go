// Package document stores students and groups as JSON documents in an embedded BoltDB file.
package document

import (
	"context"
	"encoding/json"

	"github.com/APB2021/student_manager/db"
	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
	"github.com/APB2021/student_manager/store"
	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithFields(logrus.Fields{"component": "document_store"})

type Store struct {
	m	*db.BoltDBManager
}

// open (or create) the document store in the given dir
func Open(dir string) (*Store, error) {
	m, err := db.Open(dir, StudentsBucket, GroupsBucket)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening document store in %s", dir)
	}
	s, err := New(m)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return s, nil
}

// create a store on top of an open DB manager whose students and groups buckets exist. The NIA counter is
// reconciled with the highest stored NIA so that new students never reuse an existing NIA
func New(m *db.BoltDBManager) (*Store, error) {
	s := &Store{m: m}
	if err := s.syncNIACounter(); err != nil {
		return nil, err
	}
	logger.Infof("document store ready at %s", m.Path())
	return s, nil
}

func (s *Store) syncNIACounter() error {
	seq := niaBase
	last, err := s.m.LastKey([]byte(StudentsBucket))
	if err != nil {
		return errors.Wrap(err, "error reading the highest NIA")
	}
	if last != nil {
		seq = btoi(last)
	}
	if err := s.m.SetCounter(NIACounter, seq); err != nil {
		return errors.Wrap(err, "error setting the NIA counter")
	}
	logger.Debugf("NIA counter set to %d", seq)
	return nil
}

func isNotFound(err error) bool {
	_, ok := err.(*db.ErrKeyNotFoundInBucket)
	return ok
}

func isDuplicate(err error) bool {
	_, ok := err.(*db.ErrKeyExistsInBucket)
	return ok
}

func getGroup(tx *bolt.Tx, name string) (*groupDocument, error) {
	doc := &groupDocument{Name: groups.NormalizeName(name)}
	if err := db.GetElement(tx, doc); err != nil {
		if isNotFound(err) {
			return nil, store.ErrGroupNotFound
		}
		return nil, err
	}
	return doc, nil
}

func getStudent(tx *bolt.Tx, nia int) (*studentDocument, error) {
	doc := &studentDocument{NIA: nia}
	if err := db.GetElement(tx, doc); err != nil {
		if isNotFound(err) {
			return nil, store.ErrStudentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func groupsByName(tx *bolt.Tx) (map[string]*groups.Group, error) {
	result := make(map[string]*groups.Group)
	err := db.QueryBucketInTx(tx, []byte(GroupsBucket), func(_ []byte, data []byte) error {
		doc := &groupDocument{}
		if err := json.Unmarshal(data, doc); err != nil {
			return err
		}
		result[doc.Name] = doc.toGroup()
		return nil
	})
	return result, err
}

// return the students accepted by the filter (all of them when nil) in NIA order
func listStudents(tx *bolt.Tx, filter func(*studentDocument) bool) ([]*students.Student, error) {
	groupsIndex, err := groupsByName(tx)
	if err != nil {
		return nil, err
	}
	var result []*students.Student
	err = db.QueryBucketInTx(tx, []byte(StudentsBucket), func(_ []byte, data []byte) error {
		doc := &studentDocument{}
		if err := json.Unmarshal(data, doc); err != nil {
			return err
		}
		if filter != nil && !filter(doc) {
			return nil
		}
		student, err := doc.toStudent(groupsIndex)
		if err != nil {
			return errors.Wrapf(err, "error reading student %d", doc.NIA)
		}
		result = append(result, student)
		return nil
	})
	return result, err
}

func (s *Store) InsertStudent(_ context.Context, student *students.Student) error {
	if err := store.CheckInsertable(student); err != nil {
		return err
	}
	return s.m.Transaction(func(tx *bolt.Tx) error {
		group, err := getGroup(tx, student.Group.Name)
		if err != nil {
			return err
		}
		nia, err := db.IncrementCounter(tx, NIACounter)
		if err != nil {
			return errors.Wrap(err, "error incrementing the NIA counter")
		}
		doc := newStudentDocument(student)
		doc.NIA = nia
		if err := db.PutElement(tx, doc); err != nil {
			return errors.Wrapf(err, "error inserting student %d", nia)
		}
		student.NIA = nia
		student.Group.Number = group.Number
		logger.Debugf("inserted student %d into group %s", nia, group.Name)
		return nil
	})
}

func (s *Store) GetStudent(_ context.Context, nia int) (*students.Student, error) {
	var student *students.Student
	err := s.m.View(func(tx *bolt.Tx) error {
		doc, err := getStudent(tx, nia)
		if err != nil {
			return err
		}
		groupsIndex, err := groupsByName(tx)
		if err != nil {
			return err
		}
		student, err = doc.toStudent(groupsIndex)
		return err
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (s *Store) ListStudents(_ context.Context) ([]*students.Student, error) {
	var result []*students.Student
	err := s.m.View(func(tx *bolt.Tx) error {
		var err error
		result, err = listStudents(tx, nil)
		return err
	})
	return result, err
}

func (s *Store) ListStudentsByGroup(_ context.Context, groupName string) ([]*students.Student, error) {
	var result []*students.Student
	err := s.m.View(func(tx *bolt.Tx) error {
		group, err := getGroup(tx, groupName)
		if err != nil {
			return err
		}
		result, err = listStudents(tx, func(doc *studentDocument) bool {
			return doc.GroupName == group.Name
		})
		return err
	})
	return result, err
}

func (s *Store) UpdateStudentName(_ context.Context, nia int, name string) error {
	return s.m.Transaction(func(tx *bolt.Tx) error {
		doc, err := getStudent(tx, nia)
		if err != nil {
			return err
		}
		doc.Name = students.NormalizeText(name)
		return db.PutElement(tx, doc)
	})
}

func (s *Store) ChangeStudentGroup(_ context.Context, nia int, groupName string) error {
	return s.m.Transaction(func(tx *bolt.Tx) error {
		doc, err := getStudent(tx, nia)
		if err != nil {
			return err
		}
		group, err := getGroup(tx, groupName)
		if err != nil {
			return err
		}
		if doc.GroupName == group.Name {
			return store.ErrSameGroup
		}
		doc.GroupName = group.Name
		return db.PutElement(tx, doc)
	})
}

func (s *Store) DeleteStudent(_ context.Context, nia int) error {
	return s.m.Transaction(func(tx *bolt.Tx) error {
		if err := db.DeleteElements(tx, &studentDocument{NIA: nia}); err != nil {
			if isNotFound(err) {
				return store.ErrStudentNotFound
			}
			return err
		}
		return nil
	})
}

func (s *Store) DeleteStudentsByGroup(_ context.Context, groupName string) (int, error) {
	removed := 0
	err := s.m.Transaction(func(tx *bolt.Tx) error {
		group, err := getGroup(tx, groupName)
		if err != nil {
			return err
		}
		var keys [][]byte
		if err := db.QueryBucketInTx(tx, []byte(StudentsBucket), func(key []byte, data []byte) error {
			doc := &studentDocument{}
			if err := json.Unmarshal(data, doc); err != nil {
				return err
			}
			if doc.GroupName == group.Name {
				keys = append(keys, append([]byte{}, key...))
			}
			return nil
		}); err != nil {
			return err
		}
		if err := db.DeleteKeys(tx, []byte(StudentsBucket), keys...); err != nil {
			return err
		}
		removed = len(keys)
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Debugf("deleted %d students of group %s", removed, groupName)
	return removed, nil
}

func (s *Store) InsertGroup(_ context.Context, g *groups.Group) error {
	g.Name = groups.NormalizeName(g.Name)
	if g.Name == "" {
		return groups.ErrInvalidName
	}
	return s.m.Transaction(func(tx *bolt.Tx) error {
		return insertGroup(tx, g)
	})
}

// insert the group as part of a writable transaction. On a duplicate name the caller's transaction is rolled back,
// which also gives back the group number taken here
func insertGroup(tx *bolt.Tx, g *groups.Group) error {
	number, err := db.IncrementCounter(tx, GroupCounter)
	if err != nil {
		return errors.Wrap(err, "error incrementing the group counter")
	}
	if err := db.InsertElement(tx, &groupDocument{Number: number, Name: g.Name}); err != nil {
		if isDuplicate(err) {
			return store.ErrGroupExists
		}
		return errors.Wrapf(err, "error inserting group %s", g.Name)
	}
	g.Number = number
	return nil
}

func (s *Store) GetGroup(_ context.Context, name string) (*groups.Group, error) {
	var group *groups.Group
	err := s.m.View(func(tx *bolt.Tx) error {
		doc, err := getGroup(tx, name)
		if err != nil {
			return err
		}
		group = doc.toGroup()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Store) EnsureGroup(_ context.Context, name string) (*groups.Group, error) {
	group := groups.New(name)
	if group.Name == "" {
		return nil, groups.ErrInvalidName
	}
	err := s.m.Transaction(func(tx *bolt.Tx) error {
		doc, err := getGroup(tx, group.Name)
		if err == nil {
			group.Number = doc.Number
			return nil
		}
		if err != store.ErrGroupNotFound {
			return err
		}
		logger.Infof("creating missing group %s", group.Name)
		return insertGroup(tx, group)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Store) ListGroups(_ context.Context) ([]*groups.Group, error) {
	var result []*groups.Group
	err := s.m.QueryBucket([]byte(GroupsBucket), func(_ []byte, data []byte) error {
		doc := &groupDocument{}
		if err := json.Unmarshal(data, doc); err != nil {
			return err
		}
		result = append(result, doc.toGroup())
		return nil
	})
	if err != nil {
		return nil, err
	}
	store.SortByName(result)
	return result, nil
}

func (s *Store) Close() error {
	return s.m.Close()
}
