package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func ParseRequestBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dest)
	if err != nil {
		slog.Error("error parsing request body", "error", err)
		WriteErrorJson(w, fmt.Sprintf("error parsing request body: %v", err), "validation_error", http.StatusBadRequest)
		return false
	}
	return true
}

func WriteJsonResponse(w http.ResponseWriter, data interface{}) {
	writeJson(w, data, http.StatusOK)
}

func WriteJsonCreated(w http.ResponseWriter, data interface{}) {
	writeJson(w, data, http.StatusCreated)
}

func writeJson(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("error serializing response body", "error", err)
		http.Error(w, fmt.Sprintf("error serializing response body: %v", err), http.StatusInternalServerError)
	}
}

func WriteSuccess(w http.ResponseWriter) {
	WriteJsonResponse(w, struct{}{})
}

func WriteMessage(w http.ResponseWriter, message string) {
	WriteJsonResponse(w, map[string]string{"message": message})
}

// WriteErrorJson emits the uniform error body. The message is the primary,
// human-readable field; kind is a stable machine-readable failure class.
func WriteErrorJson(w http.ResponseWriter, message, kind string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]string{"message": message, "kind": kind})
	if err != nil {
		slog.Error("error serializing error body", "error", err)
	}
}

func URLParam(r *http.Request, key string) (string, error) {
	param := chi.URLParam(r, key)
	if len(param) == 0 {
		return "", fmt.Errorf("missing {%v} url parameter", key)
	}
	return param, nil
}

func URLParamUint(r *http.Request, key string) (uint, error) {
	param := chi.URLParam(r, key)

	if len(param) == 0 {
		return 0, fmt.Errorf("missing {%v} url parameter", key)
	}

	id, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id '%v' provided: %w", param, err)
	}

	return uint(id), nil
}

func QueryParamUint(r *http.Request, key string) (uint, error) {
	param := r.URL.Query().Get(key)
	if len(param) == 0 {
		return 0, fmt.Errorf("missing %v query parameter", key)
	}

	id, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id '%v' provided: %w", param, err)
	}

	return uint(id), nil
}
