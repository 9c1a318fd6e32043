package responseformat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	Value float64            `json:"value"`
	Flags []string           `json:"flags"`
	Diag  map[string]float64 `json:"diagnostics"`
}

func TestWriteResponseJSONDefault(t *testing.T) {
	f := NewFormatter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/results", nil)

	require.NoError(t, f.WriteResponse(rec, req, http.StatusCreated, payload{Value: 1.5, Flags: []string{"Valid"}}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1.5, got["value"])
}

func TestWriteResponseMsgPack(t *testing.T) {
	f := NewFormatter()

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/results?format=msgpack", nil),
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/results", nil)
			r.Header.Set("Accept", ContentTypeMsgPack)
			return r
		}(),
	} {
		rec := httptest.NewRecorder()
		require.NoError(t, f.WriteResponse(rec, req, http.StatusOK, payload{Value: 2, Diag: map[string]float64{"a": 1}}))
		assert.Equal(t, ContentTypeMsgPack, rec.Header().Get("Content-Type"))

		var got map[string]any
		require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
		assert.Contains(t, got, "value")
		assert.Contains(t, got, "diagnostics")
	}
}

func TestDecodeRequest(t *testing.T) {
	f := NewFormatter()
	want := payload{Value: 3.25, Flags: []string{"Valid", "SpikesDetected"}, Diag: map[string]float64{"spike_percentage": 0.5}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, MsgPack, want))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flux", &buf)
	req.Header.Set("Content-Type", "application/x-msgpack; charset=binary")

	var got payload
	require.NoError(t, f.DecodeRequest(req, &got))
	assert.Equal(t, want, got)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/flux", bytes.NewBufferString(`{"value": 3.25}`))
	got = payload{}
	require.NoError(t, f.DecodeRequest(req, &got))
	assert.Equal(t, 3.25, got.Value)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, NewFormatter().WriteError(rec, req, http.StatusNotFound, "result not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"result not found"}`, rec.Body.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MsgPack")
	require.NoError(t, err)
	assert.Equal(t, MsgPack, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
