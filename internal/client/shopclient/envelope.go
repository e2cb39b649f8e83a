package shopclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedEnvelope is returned when a response body does not follow
// the API envelope contract
var ErrMalformedEnvelope = errors.New("shopclient: malformed response envelope")

const envelopeSchemaURL = "https://shopfront.local/schemas/envelope.schema.json"

// Every API response is {success, data, error{code,message}, meta}
const envelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": {"type": "boolean"},
    "data": true,
    "error": {
      "type": "object",
      "required": ["code", "message"],
      "properties": {
        "code": {"type": "string", "minLength": 1},
        "message": {"type": "string"},
        "request_id": {"type": "string"},
        "details": {"type": "array"}
      }
    },
    "meta": {
      "type": "object",
      "properties": {
        "total": {"type": "integer", "minimum": 0},
        "page": {"type": "integer", "minimum": 0},
        "page_size": {"type": "integer", "minimum": 0},
        "total_pages": {"type": "integer", "minimum": 0}
      }
    }
  },
  "if": {"properties": {"success": {"const": false}}},
  "then": {"required": ["error"]}
}`

var compileEnvelope = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(envelopeSchemaURL, strings.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("envelope schema load failed: %w", err)
	}
	return c.Compile(envelopeSchemaURL)
})

// Meta is pagination metadata of list responses
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
	Meta *Meta `json:"meta"`
}

// APIError is a well-formed error envelope or a bodiless failure status
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("shopclient: HTTP %d", e.Status)
	}
	return fmt.Sprintf("shopclient: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// decodeEnvelope validates body against the envelope schema and decodes it.
// A failure envelope is returned as *APIError.
func decodeEnvelope(status int, body []byte) (*envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		if status >= http.StatusBadRequest {
			return nil, &APIError{Status: status}
		}
		return &envelope{Success: true}, nil
	}

	schema, err := compileEnvelope()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		if status >= http.StatusBadRequest {
			return nil, &APIError{Status: status}
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if err := schema.Validate(doc); err != nil {
		if status >= http.StatusBadRequest {
			return nil, &APIError{Status: status}
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if !env.Success || status >= http.StatusBadRequest {
		apiErr := &APIError{Status: status}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.RequestID = env.Error.RequestID
		}
		return nil, apiErr
	}
	return &env, nil
}

// into decodes the data member into v
func (e *envelope) into(v any) error {
	if v == nil || len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("%w: data: %v", ErrMalformedEnvelope, err)
	}
	return nil
}
