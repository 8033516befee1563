package http

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/example/hr-delegation/internal/application"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var requestSchemas = mustLoadSchemas(
	"delegation",
	"delegation_patch",
	"response",
	"meeting",
	"schedule",
	"meeting_department",
	"calendar_event",
	"department",
	"person",
)

func mustLoadSchemas(names ...string) map[string]*gojsonschema.Schema {
	out := make(map[string]*gojsonschema.Schema, len(names))
	for _, name := range names {
		raw, err := schemaFiles.ReadFile("schemas/" + name + ".json")
		if err != nil {
			panic(fmt.Sprintf("http: read schema %s: %v", name, err))
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			panic(fmt.Sprintf("http: compile schema %s: %v", name, err))
		}
		out[name] = schema
	}
	return out
}

// decodeBody reads a JSON body, validates it against the named schema and
// unmarshals it into dst. Shape errors are reported as *application.ValidationError.
func decodeBody(w http.ResponseWriter, r *http.Request, schemaName string, dst any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errRequestTooLarge
		}
		return errBadRequestBody
	}
	if len(raw) == 0 || !json.Valid(raw) {
		return errBadRequestBody
	}

	if err := validateAgainst(schemaName, raw); err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return errBadRequestBody
	}
	return nil
}

func validateAgainst(schemaName string, raw []byte) error {
	schema, ok := requestSchemas[schemaName]
	if !ok {
		return fmt.Errorf("http: unknown schema %q", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errBadRequestBody
	}
	if result.Valid() {
		return nil
	}

	fields := make(map[string]string, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == gojsonschema.STRING_CONTEXT_ROOT || field == "" {
			field = "body"
		}
		if _, seen := fields[field]; !seen {
			fields[field] = desc.Description()
		}
	}
	return &application.ValidationError{FieldErrors: fields}
}

// writeDecodeError maps decodeBody failures onto responses.
func (r responder) writeDecodeError(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, errRequestTooLarge):
		r.writeError(req.Context(), w, http.StatusRequestEntityTooLarge, codeBadRequest, err)
	case errors.Is(err, errBadRequestBody):
		r.writeError(req.Context(), w, http.StatusBadRequest, codeBadRequest, err)
	default:
		r.handleServiceError(req.Context(), w, err)
	}
}
