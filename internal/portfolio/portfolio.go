// Package portfolio resolves the data document served by the API.
// A remote JSON document is preferred when configured. The bundled document,
// or a file override, is served otherwise.
package portfolio

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/UsamaZuberi/portfolio-v2/internal/schemas"
	"github.com/UsamaZuberi/portfolio-v2/internal/types"
)

//go:embed data.json
var bundled []byte

// Source records where a resolved document came from.
type Source string

// Document sources
const (
	SourceBlob        Source = "blob"
	SourceLocal       Source = "local"
	SourceError       Source = "error"
	SourceUnavailable Source = "unavailable"
)

// Result is the outcome of a Load. Data is nil only for SourceError and SourceUnavailable.
type Result struct {
	Data   *types.Document `json:"data"`
	Source Source          `json:"source"`
}

// Bundled returns the raw embedded document.
func Bundled() []byte {
	out := make([]byte, len(bundled))
	copy(out, bundled)
	return out
}

// Default decodes the embedded document. Each call returns a fresh copy.
func Default() (*types.Document, error) {
	return Decode(bundled)
}

// Decode validates raw against the document schema and decodes it.
func Decode(raw []byte) (*types.Document, error) {
	if err := schemas.ValidateDocument(raw); err != nil {
		return nil, err
	}
	var doc types.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio document: %w", err)
	}
	return &doc, nil
}

// LoadLocal reads the document at path, or the embedded one when path is empty.
func LoadLocal(path string) (*types.Document, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	doc, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("data file %s: %w", path, err)
	}
	return doc, nil
}
