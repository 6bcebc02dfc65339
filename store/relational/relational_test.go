package relational

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/APB2021/student_manager/store"
	"github.com/APB2021/student_manager/store/storetest"
	"github.com/dchest/uniuri"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func openForTest(t *testing.T) (*Store, func()) {
	dsn := filepath.Join(t.TempDir(), "students_"+uniuri.New()+".db")
	s, err := Open(Config{Dialect: SQLite, DSN: dsn, MaxOpenConns: 1})
	if err != nil {
		t.Fatal(err)
	}
	return s, func() {
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRelationalStore(t *testing.T) {
	suite.Run(t, &storetest.StoreSuite{
		Open: func() (store.Store, func()) {
			return openForTest(t)
		},
	})
}

func TestUnsupportedDialect(t *testing.T) {
	_, err := Open(Config{Dialect: "oracle"})
	assert.Error(t, err)
}

func TestBirthDateIsDateOnly(t *testing.T) {
	s, cleanup := openForTest(t)
	defer cleanup()
	ctx := context.Background()
	_, err := s.EnsureGroup(ctx, "A")
	require.NoError(t, err)
	student := storetest.NewStudent("ana", "lopez", "A")
	require.NoError(t, s.InsertStudent(ctx, student))
	got, err := s.GetStudent(ctx, student.NIA)
	require.NoError(t, err)
	assert.True(t, got.BirthDate.Equal(student.BirthDate))
}
