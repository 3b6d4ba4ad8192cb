// Package iojson reads and writes JSON for command line output that other
// tools consume.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the JSON shape of a command failure.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Marshal encodes obj as indented JSON. When obj cannot be encoded it
// returns an Error document describing the failure instead.
func Marshal(obj any) []byte {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err == nil {
		return bits
	}

	// Error only holds strings, so this cannot fail.
	bits, _ = json.MarshalIndent(Error{
		Message: "marshal output",
		Data:    map[string]any{"json_error": err.Error()},
	}, "", "  ")
	return bits
}

// Write writes obj to w as indented JSON followed by a newline.
func Write(w io.Writer, obj any) error {
	_, err := fmt.Fprintln(w, string(Marshal(obj)))
	return err
}

// WriteLine writes obj to w as a single line of JSON.
func WriteLine(w io.Writer, obj any) error {
	return json.NewEncoder(w).Encode(obj)
}

// WriteError writes an Error document to w.
func WriteError(w io.Writer, msg string, data map[string]any) error {
	return Write(w, Error{Message: msg, Data: data})
}
