package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ordersync/ordersync/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.List(rec, []string{"a", "b"}, response.Pagination{
		Page: 2, Limit: 10, Total: 25, Pages: 3,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	require.Len(t, body["data"], 2)
	p := body["pagination"].(map[string]interface{})
	require.EqualValues(t, 2, p["page"])
	require.EqualValues(t, 25, p["total"])
	require.EqualValues(t, 3, p["pages"])
}

func TestDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Data(rec, map[string]string{"_id": "abc"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "abc", body["data"].(map[string]interface{})["_id"])
}

func TestCreatedEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, map[string]string{"_id": "abc"})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.Equal(t, true, body["success"])
	require.NotNil(t, body["data"])
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Error(rec, http.StatusNotFound, "order not found")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "order not found", decode(t, rec)["message"])
}

func TestValidationErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationError(rec, map[string]string{"email": "email is required"})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "validation failed", body["message"])
	errs := body["errors"].(map[string]interface{})
	require.Equal(t, "email is required", errs["email"])
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NoContent(rec)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.Bytes())
}
