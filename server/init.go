package server

import (
	"fmt"
	"net/http"

	"github.com/APB2021/student_manager/store"
	"github.com/gorilla/mux"
)

// create the router serving the read-only view of the given store
func NewRouter(st store.Store) *mux.Router {
	h := &handlers{store: st}
	baseRouter := mux.NewRouter()
	baseRouter.Use(contentTypeMiddleware, loggingMiddleware)
	baseRouter.NotFoundHandler = contentTypeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeStrErrResp(w, r, http.StatusNotFound, "no such endpoint")
	}))
	studentsRouter := baseRouter.PathPrefix("/students").Subrouter()
	studentsRouter.HandleFunc("", h.handleGetStudents).Methods(http.MethodGet)
	studentsRouter.HandleFunc(fmt.Sprintf("/{%s}", nia), h.handleGetStudent).Methods(http.MethodGet)
	groupsRouter := baseRouter.PathPrefix("/groups").Subrouter()
	groupsRouter.HandleFunc("", h.handleGetGroups).Methods(http.MethodGet)
	groupsRouter.HandleFunc(fmt.Sprintf("/{%s}/students", groupName), h.handleGetGroupStudents).Methods(http.MethodGet)
	return baseRouter
}

func InitServer(cfg *Config, st store.Store) *http.Server {
	logger.Info("initializing server...")
	server := &http.Server{
		Addr:			fmt.Sprintf(":%d", cfg.Port),
		Handler:		NewRouter(st),
		WriteTimeout:	serverTimeout,
		ReadTimeout:	serverTimeout,
	}
	return server
}
