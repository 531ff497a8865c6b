// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"
)

// writeOutput encodes v as YAML, or as indented JSON when asJSON is set.
func writeOutput(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// writeOutputFile writes to path, or to w when path is empty.
func writeOutputFile(w io.Writer, path string, v any, asJSON bool) error {
	if path == "" {
		return writeOutput(w, v, asJSON)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := writeOutput(f, v, asJSON); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
