package app

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Message string `json:"message"`
}

func respondWith(w http.ResponseWriter, code int, response interface{}) {
	if err, ok := response.(error); ok {
		response = errorResponse{Message: err.Error()}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Cache-Control", "no-cache")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error(err)
	}
}
