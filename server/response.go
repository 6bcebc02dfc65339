package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

const logHttpErrFormat = "error serving http request for %s"

// body of every error response
type ErrorResponse struct {
	Status	int		`json:"status"`
	Path	string	`json:"path"`
	Message	string	`json:"message"`
}

func writeErrResp(w http.ResponseWriter, r *http.Request, httpStatus int, err error) {
	logger.WithError(err).Errorf(logHttpErrFormat, r.URL.Path)
	respBytes, _ := json.Marshal(&ErrorResponse{Status: httpStatus, Path: r.URL.Path, Message: err.Error()})
	w.WriteHeader(httpStatus)
	if _, err := w.Write(respBytes); err != nil {
		logger.WithError(err).Errorf(logHttpErrFormat, r.URL.Path)
	}
}

func writeStrErrResp(w http.ResponseWriter, r *http.Request, httpStatus int, str string) {
	writeErrResp(w, r, httpStatus, errors.New(str))
}

func writeJson(w http.ResponseWriter, r *http.Request, httpStatus int, v interface{}) {
	respBytes, err := json.Marshal(v)
	if err != nil {
		writeErrResp(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(httpStatus)
	if _, err = w.Write(respBytes); err != nil {
		logger.WithError(err).Errorf(logHttpErrFormat, r.URL.Path)
	}
}

// write the given elements wrapped in an "elements" object. A nil slice is written as an empty list
func writeElements(w http.ResponseWriter, r *http.Request, httpStatus int, elements interface{}) {
	var elementsWrapper struct {
		Elements	interface{}	`json:"elements"`
	}
	elementsWrapper.Elements = elements
	writeJson(w, r, httpStatus, elementsWrapper)
}
