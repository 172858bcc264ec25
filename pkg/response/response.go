// Package response writes the JSON envelopes the HTTP API speaks.
//
// List endpoints reply with {"data": ..., "pagination": ...}, single-record
// endpoints with {"data": ...}, create endpoints with
// {"success": true, "data": ...} and failures with {"message": ...}.
package response

import (
	"encoding/json"
	"net/http"
)

// Pagination describes the window of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSON writes an arbitrary payload with the given status.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	write(w, status, body)
}

// Data writes {"data": v} with 200.
func Data(w http.ResponseWriter, v interface{}) {
	write(w, http.StatusOK, map[string]interface{}{"data": v})
}

// List writes {"data": items, "pagination": p} with 200.
func List(w http.ResponseWriter, items interface{}, p Pagination) {
	write(w, http.StatusOK, map[string]interface{}{
		"data":       items,
		"pagination": p,
	})
}

// Created writes {"success": true, "data": v} with 201.
func Created(w http.ResponseWriter, v interface{}) {
	write(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    v,
	})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes {"message": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, map[string]string{"message": msg})
}

// ValidationError writes field errors as {"message": ..., "errors": ...} with 422.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"message": "validation failed",
		"errors":  errs,
	})
}
