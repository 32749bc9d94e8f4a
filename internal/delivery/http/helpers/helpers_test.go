package helpers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name string `json:"name"`
}

func (s sampleRequest) Validate() error {
	if s.Name == "" {
		return errors.New("name: cannot be blank.")
	}
	return nil
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSONSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONSuccess(rec, http.StatusCreated, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decodeEnvelope(t, rec)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"id": "1"}, resp.Data)
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, http.StatusBadRequest, ErrCodeSlotUnavailable, "slot unavailable")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSlotUnavailable, resp.Error.Code)
	assert.Equal(t, "slot unavailable", resp.Error.Message)
}

func TestWriteInternalError_HidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteInternalError(rec)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInternalError, resp.Error.Code)
	assert.Equal(t, "internal server error", resp.Error.Message)
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantSubstr string
	}{
		{name: "valid body", body: `{"name":"Ada"}`, wantOK: true},
		{name: "empty body", body: ``, wantSubstr: "request body is required"},
		{name: "malformed json", body: `{"name":`, wantSubstr: "unexpected EOF"},
		{name: "unknown field", body: `{"name":"Ada","extra":1}`, wantSubstr: "unknown field"},
		{name: "trailing object", body: `{"name":"Ada"}{"name":"Bob"}`, wantSubstr: "single JSON object"},
		{name: "validation failure", body: `{"name":""}`, wantSubstr: "name: cannot be blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			var dest sampleRequest

			ok := DecodeAndValidate(rec, req, &dest)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "Ada", dest.Name)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeEnvelope(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeBadRequest, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantSubstr)
		})
	}
}
