package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/APB2021/student_manager/db"
	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/store"
	"github.com/APB2021/student_manager/store/document"
	"github.com/APB2021/student_manager/store/storetest"
)

func initStoreForHandlersTest(t *testing.T) (store.Store, func()) {
	m, cleanup := db.InitDbForTest(document.StudentsBucket, document.GroupsBucket)
	st, err := document.New(m)
	if err != nil {
		cleanup()
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		if err := st.InsertGroup(ctx, groups.New(name)); err != nil {
			cleanup()
			t.Fatal(err)
		}
	}
	for _, s := range [][]string{{"ana", "lopez", "A"}, {"luis", "perez", "B"}, {"eva", "ruiz", "A"}} {
		if err := st.InsertStudent(ctx, storetest.NewStudent(s[0], s[1], s[2])); err != nil {
			cleanup()
			t.Fatal(err)
		}
	}
	return st, cleanup
}

func TestHandlers(t *testing.T) {
	st, cleanup := initStoreForHandlersTest(t)
	defer cleanup()
	router := NewRouter(st)
	testCases := []struct{
		name		string
		method		string
		path		string
		status		int
		elements	int
	}{
		{"test get all students", http.MethodGet, "/students", http.StatusOK, 3},
		{"test get student", http.MethodGet, "/students/1002", http.StatusOK, -1},
		{"test get missing student", http.MethodGet, "/students/42", http.StatusNotFound, -1},
		{"test get student with invalid nia", http.MethodGet, "/students/abc", http.StatusBadRequest, -1},
		{"test get all groups", http.MethodGet, "/groups", http.StatusOK, 3},
		{"test get students of group", http.MethodGet, "/groups/a/students", http.StatusOK, 2},
		{"test get students of empty group", http.MethodGet, "/groups/C/students", http.StatusOK, 0},
		{"test get students of missing group", http.MethodGet, "/groups/Z/students", http.StatusNotFound, -1},
		{"test post student", http.MethodPost, "/students", http.StatusMethodNotAllowed, -1},
		{"test unknown path", http.MethodGet, "/courses", http.StatusNotFound, -1},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request, err := http.NewRequest(testCase.method, testCase.path, nil)
			if err != nil {
				t.Fatalf("error creating http request: %v", err)
			}
			writer := httptest.NewRecorder()
			router.ServeHTTP(writer, request)
			if writer.Code != testCase.status {
				t.Fatalf("expected status %d but got %d (%s)", testCase.status, writer.Code, writer.Body.String())
			}
			if testCase.elements < 0 {
				return
			}
			var body struct {
				Elements	[]json.RawMessage	`json:"elements"`
			}
			if err := json.Unmarshal(writer.Body.Bytes(), &body); err != nil {
				t.Fatalf("error parsing response: %v", err)
			}
			if body.Elements == nil || len(body.Elements) != testCase.elements {
				t.Fatalf("expected %d elements but got %d", testCase.elements, len(body.Elements))
			}
		})
	}
}

func TestGetStudentBody(t *testing.T) {
	st, cleanup := initStoreForHandlersTest(t)
	defer cleanup()
	request, err := http.NewRequest(http.MethodGet, "/students/1001", nil)
	if err != nil {
		t.Fatalf("error creating http request: %v", err)
	}
	writer := httptest.NewRecorder()
	NewRouter(st).ServeHTTP(writer, request)
	view := &studentView{}
	if err := json.Unmarshal(writer.Body.Bytes(), view); err != nil {
		t.Fatalf("error parsing response: %v", err)
	}
	expected := studentView{1001, "ANA", "LOPEZ", "F", "15-06-2003", "DAM", "2", "A"}
	if *view != expected {
		t.Fatalf("expected %+v but got %+v", expected, *view)
	}
	if writer.Header().Get(ContentType) != ApplicationJson {
		t.Fatalf("unexpected content type %s", writer.Header().Get(ContentType))
	}
}

func TestErrorBody(t *testing.T) {
	st, cleanup := initStoreForHandlersTest(t)
	defer cleanup()
	request, err := http.NewRequest(http.MethodGet, "/students/42", nil)
	if err != nil {
		t.Fatalf("error creating http request: %v", err)
	}
	writer := httptest.NewRecorder()
	NewRouter(st).ServeHTTP(writer, request)
	body := &ErrorResponse{}
	if err := json.Unmarshal(writer.Body.Bytes(), body); err != nil {
		t.Fatalf("error parsing response: %v", err)
	}
	expected := ErrorResponse{http.StatusNotFound, "/students/42", store.ErrStudentNotFound.Error()}
	if *body != expected {
		t.Fatalf("expected %+v but got %+v", expected, *body)
	}
}
