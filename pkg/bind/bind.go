// Package bind decodes request bodies into structs and runs validation.
package bind

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ordersync/ordersync/pkg/validate"
)

const maxMultipartMemory = 16 << 20

// JSON decodes the request body into dst and validates it. The returned map
// holds field errors when validation fails; a non-nil error means the body
// could not be decoded at all.
func JSON(r *http.Request, dst interface{}) (map[string]string, error) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return nil, fmt.Errorf("bind: decode json: %w", err)
	}
	if errs := validate.Struct(dst); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

// Form parses a multipart or urlencoded form. Call FormValue helpers after.
func Form(r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	if len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return fmt.Errorf("bind: parse multipart: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("bind: parse form: %w", err)
	}
	return nil
}

// FormInt reads a form field as an int, falling back to def when absent or
// malformed.
func FormInt(r *http.Request, key string, def int) int {
	v := r.FormValue(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// QueryInt reads a query parameter as an int with a default.
func QueryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
