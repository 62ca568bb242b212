// Package config defines the JSON-serializable pipeline model for the
// tabetl binary: the ordered list of sources to ingest, the four report
// output locations, and an optional database sink. Decoding is performed by
// the standard library; the model is deliberately small so a pipeline file
// can be loaded from disk and passed through the program without glue code.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels metrics and log lines for this run.
	Job string `json:"job"`

	// Sources are ingested strictly in order. Order only affects the
	// sequence of per-source column sets, which intersection treats as a
	// set, so reordering sources never changes report content.
	Sources []Source `json:"sources"`

	// Outputs holds the four report file locations.
	Outputs Outputs `json:"outputs"`

	// Storage optionally loads the flat union view into a database after
	// the reports are written. Nil disables the load stage.
	Storage *Storage `json:"storage,omitempty"`
}

// Source identifies one input to ingest.
type Source struct {
	// Kind selects the decoder: "csv", "json", or "xml".
	Kind string `json:"kind"`

	// Path is the local filesystem location of the input.
	Path string `json:"path"`

	// Delimiter overrides the field separator for "csv" sources; the first
	// rune is used. Empty means comma.
	Delimiter string `json:"delimiter,omitempty"`
}

// Outputs names the four report files: both shapes under both policies.
type Outputs struct {
	Basic          string `json:"basic"`
	Advanced       string `json:"advanced"`
	BasicCommon    string `json:"basic_common"`
	AdvancedCommon string `json:"advanced_common"`
}

// Storage selects the database sink for the load stage.
type Storage struct {
	// Kind selects a registered backend: "sqlite", "postgres", "mssql",
	// or "mysql".
	Kind string `json:"kind"`

	DB DBConfig `json:"db"`
}

// DBConfig configures the selected backend.
type DBConfig struct {
	// DSN is the backend connection string (file path for sqlite,
	// postgresql:// URL for postgres, and so on).
	DSN string `json:"dsn"`

	// Table is the destination table name; it is created from the resolved
	// columns before loading.
	Table string `json:"table"`

	// BatchSize bounds rows per insert batch; a default applies when zero.
	BatchSize int `json:"batch_size,omitempty"`
}

// Load decodes a pipeline file from disk.
func Load(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var p Pipeline
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return p, nil
}

// Default returns the built-in pipeline: the fixed source and output
// locations the flagless CLI contract names, with no database sink.
func Default() Pipeline {
	return Pipeline{
		Job: "tabetl",
		Sources: []Source{
			{Kind: "csv", Path: "data/csv_data_1.csv"},
			{Kind: "csv", Path: "data/csv_data_2.csv"},
			{Kind: "json", Path: "data/json_data.json"},
			{Kind: "xml", Path: "data/xml_data.xml"},
		},
		Outputs: Outputs{
			Basic:          "results/out_basic.tsv",
			Advanced:       "results/out_advanced.tsv",
			BasicCommon:    "results/out_basic_common.tsv",
			AdvancedCommon: "results/out_advanced_common.tsv",
		},
	}
}
