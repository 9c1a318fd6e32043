package responseformat

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is a wire encoding.
type Format string

const (
	JSON    Format = "json"
	MsgPack Format = "msgpack"

	ContentTypeJSON    = "application/json"
	ContentTypeMsgPack = "application/x-msgpack"
)

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return JSON, nil
	case "msgpack", "messagepack":
		return MsgPack, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == MsgPack {
		return ContentTypeMsgPack
	}
	return ContentTypeJSON
}

// Encode writes data to w. MessagePack uses the json struct tags so both
// encodings share field names.
func Encode(w io.Writer, f Format, data any) error {
	if f == MsgPack {
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(data)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Decode reads one value of format f from r into v.
func Decode(r io.Reader, f Format, v any) error {
	if f == MsgPack {
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("json")
		return dec.Decode(v)
	}
	return json.NewDecoder(r).Decode(v)
}

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// ResponseFormat picks the response encoding: format=msgpack in the query
// wins, then an Accept header naming MessagePack, then JSON.
func (f *Formatter) ResponseFormat(req *http.Request) Format {
	if q := req.URL.Query().Get("format"); q != "" {
		if format, err := ParseFormat(q); err == nil {
			return format
		}
	}
	if strings.Contains(req.Header.Get("Accept"), ContentTypeMsgPack) {
		return MsgPack
	}
	return JSON
}

// RequestFormat picks the body encoding from Content-Type; anything that is
// not MessagePack is read as JSON.
func (f *Formatter) RequestFormat(req *http.Request) Format {
	mt, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err == nil && mt == ContentTypeMsgPack {
		return MsgPack
	}
	return JSON
}

// DecodeRequest decodes the request body into v.
func (f *Formatter) DecodeRequest(req *http.Request, v any) error {
	return Decode(req.Body, f.RequestFormat(req), v)
}

// WriteResponse writes data with the given status in the format the request
// asked for.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, status int, data any) error {
	format := f.ResponseFormat(req)

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(status)
	return Encode(w, format, data)
}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteError writes an ErrorBody with the given status.
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, msg string) error {
	return f.WriteResponse(w, req, status, ErrorBody{Error: msg})
}
