package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/trebsim/internal/flight"
)

type ExportData struct {
	Meta    RunMetadata     `json:"meta"`
	Samples []flight.Sample `json:"samples"`
}

// ExportJSON writes a run and its samples as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, samples []flight.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: meta, Samples: samples})
}
