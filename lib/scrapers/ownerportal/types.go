package ownerportal

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Envelope is one decoded HTTP response. Exactly one of JSON and Text
// carries the body: JSON when the decompressed body parsed as JSON,
// Text otherwise (several portal endpoints answer with HTML).
type Envelope struct {
	Status int
	Header http.Header
	JSON   json.RawMessage
	Text   string
}

// IsJSON reports whether the body parsed as structured data.
func (e *Envelope) IsJSON() bool {
	return e.JSON != nil
}

func newEnvelope(status int, header http.Header, body []byte) *Envelope {
	env := &Envelope{Status: status, Header: header}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		env.JSON = json.RawMessage(trimmed)
	} else {
		env.Text = string(body)
	}
	return env
}

// decompress undoes the response body's Content-Encoding. An empty
// encoding means the body is used verbatim. "deflate" is tried as
// zlib first with a raw-deflate fallback, since servers disagree on
// which of the two the name means.
func decompress(encoding string, body []byte) ([]byte, error) {
	switch encoding {
	case "":
		return body, nil
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, &DecodeError{Encoding: encoding, Err: err}
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, &DecodeError{Encoding: encoding, Err: err}
		}
		return out, nil
	case "deflate":
		r, err := zlib.NewReader(bytes.NewReader(body))
		if err == nil {
			defer r.Close()
			out, err := io.ReadAll(r)
			if err == nil {
				return out, nil
			}
		}
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		out, err := io.ReadAll(fr)
		if err != nil {
			return nil, &DecodeError{Encoding: encoding, Err: err}
		}
		return out, nil
	case "br":
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, &DecodeError{Encoding: encoding, Err: err}
		}
		return out, nil
	default:
		// unknown encodings pass through untouched rather than
		// failing the run
		return body, nil
	}
}
