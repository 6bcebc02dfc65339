// Package relational stores students and groups in a SQL database through GORM.
package relational

import (
	"context"
	"fmt"
	"time"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
	"github.com/APB2021/student_manager/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var logger = logrus.WithFields(logrus.Fields{"component": "relational_store"})

// supported SQL dialects
const (
	Postgres	= "postgres"
	SQLite		= "sqlite"
)

type Config struct {
	Dialect			string
	DSN				string
	MaxOpenConns	int
	MaxIdleConns	int
	ConnMaxLifetime	time.Duration
}

type Store struct {
	db	*gorm.DB
}

func dialector(config Config) (gorm.Dialector, error) {
	switch config.Dialect {
	case Postgres:
		return postgres.Open(config.DSN), nil
	case SQLite:
		return sqlite.Open(config.DSN), nil
	}
	return nil, fmt.Errorf("unsupported SQL dialect \"%s\"", config.Dialect)
}

func newGormLogger() gormlogger.Interface {
	level := gormlogger.Warn
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(logger, gormlogger.Config{
		SlowThreshold:				time.Second,
		LogLevel:					level,
		IgnoreRecordNotFoundError:	true,
	})
}

// connect to the configured database and create the schema if it doesn't exist yet
func Open(config Config) (*Store, error) {
	d, err := dialector(config)
	if err != nil {
		return nil, err
	}
	logger.Infof("connecting to %s database ...", config.Dialect)
	gormDb, err := gorm.Open(d, &gorm.Config{Logger: newGormLogger(), TranslateError: true})
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to %s database", config.Dialect)
	}
	sqlDb, err := gormDb.DB()
	if err != nil {
		return nil, err
	}
	if config.MaxOpenConns > 0 {
		sqlDb.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		sqlDb.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		sqlDb.SetConnMaxLifetime(config.ConnMaxLifetime)
	}
	if err := gormDb.AutoMigrate(&groupRow{}, &studentRow{}); err != nil {
		_ = sqlDb.Close()
		return nil, errors.Wrap(err, "error migrating schema")
	}
	logger.Infof("connected to %s database", config.Dialect)
	return &Store{db: gormDb}, nil
}

func findGroup(tx *gorm.DB, name string) (*groupRow, error) {
	row := &groupRow{}
	if err := tx.Where("nombre_grupo = ?", groups.NormalizeName(name)).First(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrGroupNotFound
		}
		return nil, err
	}
	return row, nil
}

func findStudent(tx *gorm.DB, nia int) (*studentRow, error) {
	row := &studentRow{}
	if err := tx.Preload("Group").First(row, "nia = ?", nia).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrStudentNotFound
		}
		return nil, err
	}
	return row, nil
}

func toStudents(rows []studentRow) []*students.Student {
	result := make([]*students.Student, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toStudent())
	}
	return result
}

func (s *Store) InsertStudent(ctx context.Context, student *students.Student) error {
	if err := store.CheckInsertable(student); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := findGroup(tx, student.Group.Name)
		if err != nil {
			return err
		}
		row := &studentRow{
			Name:			student.Name,
			Surname:		student.Surname,
			Gender:			string(student.Gender),
			BirthDate:		student.BirthDate,
			Cycle:			student.Cycle,
			Course:			student.Course,
			GroupNumber:	group.Number,
		}
		if err := tx.Omit("Group").Create(row).Error; err != nil {
			return errors.Wrap(err, "error inserting student")
		}
		student.NIA = row.NIA
		student.Group.Number = group.Number
		logger.Debugf("inserted student %d into group %s", row.NIA, group.Name)
		return nil
	})
}

func (s *Store) GetStudent(ctx context.Context, nia int) (*students.Student, error) {
	row, err := findStudent(s.db.WithContext(ctx), nia)
	if err != nil {
		return nil, err
	}
	return row.toStudent(), nil
}

func (s *Store) ListStudents(ctx context.Context) ([]*students.Student, error) {
	var rows []studentRow
	if err := s.db.WithContext(ctx).Preload("Group").Order("nia").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "error listing students")
	}
	return toStudents(rows), nil
}

func (s *Store) ListStudentsByGroup(ctx context.Context, groupName string) ([]*students.Student, error) {
	tx := s.db.WithContext(ctx)
	group, err := findGroup(tx, groupName)
	if err != nil {
		return nil, err
	}
	var rows []studentRow
	if err := tx.Preload("Group").Where("numero_grupo = ?", group.Number).Order("nia").Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "error listing students of group %s", group.Name)
	}
	return toStudents(rows), nil
}

func (s *Store) UpdateStudentName(ctx context.Context, nia int, name string) error {
	result := s.db.WithContext(ctx).Model(&studentRow{}).Where("nia = ?", nia).Update("nombre", students.NormalizeText(name))
	if result.Error != nil {
		return errors.Wrapf(result.Error, "error updating student %d", nia)
	}
	if result.RowsAffected == 0 {
		return store.ErrStudentNotFound
	}
	return nil
}

func (s *Store) ChangeStudentGroup(ctx context.Context, nia int, groupName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		student, err := findStudent(tx, nia)
		if err != nil {
			return err
		}
		group, err := findGroup(tx, groupName)
		if err != nil {
			return err
		}
		if student.GroupNumber == group.Number {
			return store.ErrSameGroup
		}
		if err := tx.Model(&studentRow{}).Where("nia = ?", nia).Update("numero_grupo", group.Number).Error; err != nil {
			return errors.Wrapf(err, "error moving student %d to group %s", nia, group.Name)
		}
		return nil
	})
}

func (s *Store) DeleteStudent(ctx context.Context, nia int) error {
	result := s.db.WithContext(ctx).Delete(&studentRow{}, "nia = ?", nia)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "error deleting student %d", nia)
	}
	if result.RowsAffected == 0 {
		return store.ErrStudentNotFound
	}
	return nil
}

func (s *Store) DeleteStudentsByGroup(ctx context.Context, groupName string) (int, error) {
	removed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := findGroup(tx, groupName)
		if err != nil {
			return err
		}
		result := tx.Delete(&studentRow{}, "numero_grupo = ?", group.Number)
		if result.Error != nil {
			return errors.Wrapf(result.Error, "error deleting students of group %s", group.Name)
		}
		removed = int(result.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func insertGroup(tx *gorm.DB, g *groups.Group) error {
	if _, err := findGroup(tx, g.Name); err == nil {
		return store.ErrGroupExists
	} else if err != store.ErrGroupNotFound {
		return err
	}
	row := &groupRow{Name: g.Name}
	if err := tx.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return store.ErrGroupExists
		}
		return errors.Wrapf(err, "error inserting group %s", g.Name)
	}
	g.Number = row.Number
	return nil
}

func (s *Store) InsertGroup(ctx context.Context, g *groups.Group) error {
	g.Name = groups.NormalizeName(g.Name)
	if g.Name == "" {
		return groups.ErrInvalidName
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertGroup(tx, g)
	})
}

func (s *Store) GetGroup(ctx context.Context, name string) (*groups.Group, error) {
	row, err := findGroup(s.db.WithContext(ctx), name)
	if err != nil {
		return nil, err
	}
	return row.toGroup(), nil
}

func (s *Store) EnsureGroup(ctx context.Context, name string) (*groups.Group, error) {
	group := groups.New(name)
	if group.Name == "" {
		return nil, groups.ErrInvalidName
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findGroup(tx, group.Name)
		if err == nil {
			group.Number = row.Number
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

func (s *Store) ListGroups(ctx context.Context) ([]*groups.Group, error) {
	var rows []groupRow
	if err := s.db.WithContext(ctx).Order("nombre_grupo").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "error listing groups")
	}
	result := make([]*groups.Group, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toGroup())
	}
	return result, nil
}

func (s *Store) Close() error {
	sqlDb, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}
