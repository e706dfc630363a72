package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func NewRouter(handler *Handler) http.Handler {
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return cors.Default().Handler(r)
}

func StartServer(addr string, handler http.Handler, log logrus.FieldLogger) {
	log.WithField("addr", addr).Info("Viewer Service starting")
	log.Fatal(http.ListenAndServe(addr, handler))
}
