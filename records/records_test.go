package records

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/APB2021/student_manager/codec"
	"github.com/APB2021/student_manager/db"
	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/store"
	"github.com/APB2021/student_manager/store/document"
	"github.com/APB2021/student_manager/store/storetest"
	"github.com/stretchr/testify/suite"
)

type RecordsSuite struct {
	suite.Suite
	ctx		context.Context
	store	store.Store
	records	*Records
	cleanup	func()
}

func newDocumentStore(t *testing.T) (store.Store, func()) {
	m, cleanup := db.InitDbForTest(document.StudentsBucket, document.GroupsBucket)
	st, err := document.New(m)
	if err != nil {
		cleanup()
		t.Fatal(err)
	}
	return st, cleanup
}

func (s *RecordsSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, s.cleanup = newDocumentStore(s.T())
	s.records = New(s.store, s.T().TempDir())
}

func (s *RecordsSuite) TearDownTest() {
	s.cleanup()
}

func (s *RecordsSuite) populate() {
	for _, name := range []string{"A", "B"} {
		s.Require().NoError(s.store.InsertGroup(s.ctx, groups.New(name)))
	}
	for _, student := range [][]string{{"ana", "lopez", "A"}, {"luis", "perez", "B"}, {"eva", "ruiz", "A"}} {
		s.Require().NoError(s.store.InsertStudent(s.ctx, storetest.NewStudent(student[0], student[1], student[2])))
	}
}

func (s *RecordsSuite) readFile(name string) string {
	data, err := os.ReadFile(filepath.Join(s.records.Dir(), name))
	s.Require().NoError(err)
	return string(data)
}

// (name, surname, group) tuples of every student in the given store
func (s *RecordsSuite) tuples(st store.Store) []string {
	list, err := st.ListStudents(s.ctx)
	s.Require().NoError(err)
	var result []string
	for _, student := range list {
		result = append(result, strings.Join([]string{student.Name, student.Surname, student.GroupName()}, "|"))
	}
	sort.Strings(result)
	return result
}

func (s *RecordsSuite) TestExportTextEmptyStore() {
	_, err := s.records.ExportText(s.ctx, nil)
	s.ErrorIs(err, ErrNoStudents)
	_, err = os.Stat(filepath.Join(s.records.Dir(), TextFileName))
	s.True(os.IsNotExist(err))
}

func (s *RecordsSuite) TestExportText() {
	s.populate()
	count, err := s.records.ExportText(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(3, count)
	lines := strings.Split(strings.TrimSpace(s.readFile(TextFileName)), "\n")
	s.Require().Len(lines, 4)
	s.Equal(codec.TextHeader, lines[0])
	s.Equal("1001,ANA,LOPEZ,F,15-06-2003,DAM,2,A", lines[1])
	s.True(strings.HasPrefix(lines[3], "1003,EVA"))
	entries, err := os.ReadDir(s.records.Dir())
	s.Require().NoError(err)
	s.Len(entries, 1, "no temp file may be left behind")
}

func (s *RecordsSuite) TestExportTextOverwrite() {
	s.populate()
	path := filepath.Join(s.records.Dir(), TextFileName)
	s.Require().NoError(os.WriteFile(path, []byte("old"), 0644))

	asked := ""
	_, err := s.records.ExportText(s.ctx, func(p string) bool {
		asked = p
		return false
	})
	s.ErrorIs(err, ErrOverwriteDeclined)
	s.Equal(path, asked)
	s.Equal("old", s.readFile(TextFileName))

	_, err = s.records.ExportText(s.ctx, func(string) bool { return true })
	s.Require().NoError(err)
	s.True(strings.HasPrefix(s.readFile(TextFileName), codec.TextHeader))
}

func (s *RecordsSuite) TestTextRoundTrip() {
	s.populate()
	_, err := s.records.ExportText(s.ctx, nil)
	s.Require().NoError(err)

	target, cleanup := newDocumentStore(s.T())
	defer cleanup()
	result, err := New(target, s.records.Dir()).ImportText(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, result.Inserted)
	s.Zero(result.Skipped)
	s.Equal(s.tuples(s.store), s.tuples(target))
	// missing groups were created
	list, err := target.ListGroups(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *RecordsSuite) TestImportTextSkipsShortLines() {
	content := codec.TextHeader + "\n" +
		"1,ANA,LOPEZ,F,15-06-2003,DAM,2,A\n" +
		"2,LUIS,PEREZ,M,15-06-2003,DAM,2\n" +
		"3,EVA,RUIZ,F,not-a-date,DAM,2,C\n"
	s.Require().NoError(os.WriteFile(filepath.Join(s.records.Dir(), TextFileName), []byte(content), 0644))
	result, err := s.records.ImportText(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, result.Inserted)
	s.Equal(2, result.Skipped)
	s.Equal([]string{"ANA|LOPEZ|A"}, s.tuples(s.store))
}

// counts the groups resolved through it and fails to resolve group X
type countingStore struct {
	store.Store
	ensured	map[string]int
}

func (c *countingStore) EnsureGroup(ctx context.Context, name string) (*groups.Group, error) {
	c.ensured[name]++
	if name == "X" {
		return nil, groups.ErrInvalidName
	}
	return c.Store.EnsureGroup(ctx, name)
}

func (s *RecordsSuite) TestImportTextResolvesEachGroupOnce() {
	content := codec.TextHeader + "\n" +
		"1,ANA,LOPEZ,F,15-06-2003,DAM,2,A\n" +
		"2,LUIS,PEREZ,M,15-06-2003,DAM,2,X\n" +
		"3,EVA,RUIZ,F,15-06-2003,DAM,2,A\n" +
		"4,PAU,GIL,M,15-06-2003,DAM,2,X\n" +
		"5,RAQUEL,SANZ,F,15-06-2003,DAM,2,B\n"
	s.Require().NoError(os.WriteFile(filepath.Join(s.records.Dir(), TextFileName), []byte(content), 0644))
	counting := &countingStore{Store: s.store, ensured: make(map[string]int)}
	result, err := New(counting, s.records.Dir()).ImportText(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, result.Inserted)
	s.Equal(2, result.Skipped)
	s.Equal(map[string]int{"A": 1, "B": 1, "X": 1}, counting.ensured)
	s.Equal([]string{"ANA|LOPEZ|A", "EVA|RUIZ|A", "RAQUEL|SANZ|B"}, s.tuples(s.store))
}

func (s *RecordsSuite) TestImportTextNothingImported() {
	s.Require().NoError(os.WriteFile(filepath.Join(s.records.Dir(), TextFileName), []byte(codec.TextHeader+"\n"), 0644))
	result, err := s.records.ImportText(s.ctx)
	s.ErrorIs(err, ErrNothingImported)
	s.Zero(result.Inserted)
}

func (s *RecordsSuite) TestImportTextMissingFile() {
	_, err := s.records.ImportText(s.ctx)
	s.Error(err)
}

func (s *RecordsSuite) TestExportXMLWithoutGroups() {
	_, err := s.records.ExportXML(s.ctx)
	s.ErrorIs(err, ErrNoGroups)
}

func (s *RecordsSuite) TestXMLRoundTrip() {
	s.populate()
	s.Require().NoError(s.store.InsertGroup(s.ctx, groups.New("C")))
	count, err := s.records.ExportXML(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
	s.Contains(s.readFile(XMLFileName), `nombreGrupo="C"`)

	target, cleanup := newDocumentStore(s.T())
	defer cleanup()
	// an existing group is reused
	s.Require().NoError(target.InsertGroup(s.ctx, groups.New("B")))
	result, err := New(target, s.records.Dir()).ImportXML(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, result.Inserted)
	s.Equal(s.tuples(s.store), s.tuples(target))
	list, err := target.ListGroups(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 3)
}

func (s *RecordsSuite) TestImportXMLAbortsOnParseError() {
	s.Require().NoError(os.WriteFile(filepath.Join(s.records.Dir(), XMLFileName), []byte("<grupos><grupo>"), 0644))
	_, err := s.records.ImportXML(s.ctx)
	s.Error(err)
	s.Empty(s.tuples(s.store))
}

func (s *RecordsSuite) TestExportGroupXML() {
	s.populate()
	path, err := s.records.ExportGroupXML(s.ctx, "a", nil)
	s.Require().NoError(err)
	s.Equal(filepath.Join(s.records.Dir(), "grupo_A.xml"), path)
	content := s.readFile("grupo_A.xml")
	s.Contains(content, `<grupo numeroGrupo="1" nombreGrupo="A">`)
	s.Contains(content, `nombre="ANA"`)
	s.Contains(content, `nombre="EVA"`)
	s.NotContains(content, `nombre="LUIS"`)

	_, err = s.records.ExportGroupXML(s.ctx, "A", func(string) bool { return false })
	s.ErrorIs(err, ErrOverwriteDeclined)
	_, err = s.records.ExportGroupXML(s.ctx, "Z", nil)
	s.ErrorIs(err, store.ErrGroupNotFound)
}

func TestRecords(t *testing.T) {
	suite.Run(t, new(RecordsSuite))
}
