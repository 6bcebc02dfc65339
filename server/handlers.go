package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/APB2021/student_manager/store"
	"github.com/gorilla/mux"
)

// read-only handlers over a store
type handlers struct {
	store	store.Store
}

func (h *handlers) handleGetStudents(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListStudents(r.Context())
	if err != nil {
		writeErrResp(w, r, http.StatusInternalServerError, err)
		return
	}
	writeElements(w, r, http.StatusOK, newStudentViews(list))
}

func (h *handlers) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	requestedNia, err := strconv.Atoi(mux.Vars(r)[nia])
	if err != nil {
		writeStrErrResp(w, r, http.StatusBadRequest, "NIA must be a number")
		return
	}
	student, err := h.store.GetStudent(r.Context(), requestedNia)
	if err != nil {
		if errors.Is(err, store.ErrStudentNotFound) {
			writeErrResp(w, r, http.StatusNotFound, err)
		} else {
			writeErrResp(w, r, http.StatusInternalServerError, err)
		}
		return
	}
	writeJson(w, r, http.StatusOK, newStudentView(student))
}

func (h *handlers) handleGetGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListGroups(r.Context())
	if err != nil {
		writeErrResp(w, r, http.StatusInternalServerError, err)
		return
	}
	writeElements(w, r, http.StatusOK, newGroupViews(list))
}

func (h *handlers) handleGetGroupStudents(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListStudentsByGroup(r.Context(), mux.Vars(r)[groupName])
	if err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			writeErrResp(w, r, http.StatusNotFound, err)
		} else {
			writeErrResp(w, r, http.StatusInternalServerError, err)
		}
		return
	}
	writeElements(w, r, http.StatusOK, newStudentViews(list))
}
