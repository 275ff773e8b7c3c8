// Package output renders core results as NDJSON for machine consumers
// and as plain text for humans.
package output

import (
	"encoding/json"
	"io"
)

// SchemaVersion is stamped on every NDJSON record so downstream agents
// can detect contract changes.
const SchemaVersion = 1

// NDJSONWriter writes one JSON object per line.
type NDJSONWriter struct {
	encoder *json.Encoder
}

// NewNDJSONWriter creates an NDJSON writer.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep log text unescaped
	return &NDJSONWriter{encoder: enc}
}

// ErrorOutput is a structured, machine-readable failure.
type ErrorOutput struct {
	Type          string `json:"type"` // always "error"
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

// WarningOutput is a non-fatal notice.
type WarningOutput struct {
	Type          string `json:"type"` // always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
}

// Result wraps a typed payload in the NDJSON envelope.
type Result struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Status        string `json:"status"`
	Data          any    `json:"data"`
}

// WriteError emits an error record.
func (w *NDJSONWriter) WriteError(code, message string) error {
	return w.encoder.Encode(ErrorOutput{Type: "error", SchemaVersion: SchemaVersion, Code: code, Message: message})
}

// WriteWarning emits a warning record.
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.encoder.Encode(WarningOutput{Type: "warning", SchemaVersion: SchemaVersion, Message: message})
}

// WriteResult emits a success payload under the given record type.
func (w *NDJSONWriter) WriteResult(recordType string, data any) error {
	return w.encoder.Encode(Result{Type: recordType, SchemaVersion: SchemaVersion, Status: "success", Data: data})
}

// WriteRaw emits an arbitrary value as one NDJSON record.
func (w *NDJSONWriter) WriteRaw(v any) error {
	return w.encoder.Encode(v)
}
