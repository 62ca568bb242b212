// This file adds a lightweight linter for Pipeline values. It performs
// static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface before running.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding surfaced to users without
	// necessarily blocking execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the config (e.g. "sources[1].path"); Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where convenient.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownSourceKinds are the decoders the ingest wiring can construct.
var knownSourceKinds = map[string]struct{}{
	"csv":  {},
	"json": {},
	"xml":  {},
}

// knownStorageKinds are the backends registered by the storage wiring.
var knownStorageKinds = map[string]struct{}{
	"sqlite":   {},
	"postgres": {},
	"mssql":    {},
	"mysql":    {},
}

// ValidatePipeline performs static validation of a Pipeline without
// mutating it. Callers decide whether warnings block execution.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics and log lines will be unlabeled",
		})
	}

	if len(p.Sources) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sources",
			Message:  "at least one source is required",
		})
	}
	for i, s := range p.Sources {
		path := fmt.Sprintf("sources[%d]", i)
		if _, ok := knownSourceKinds[s.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown source kind %q (want csv, json, or xml)", s.Kind),
			})
		}
		if strings.TrimSpace(s.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".path",
				Message:  "source path must not be empty",
			})
		}
		if s.Delimiter != "" && s.Kind != "csv" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".delimiter",
				Message:  fmt.Sprintf("delimiter is only meaningful for csv sources, not %q", s.Kind),
			})
		}
	}

	outputs := []struct{ path, value string }{
		{"outputs.basic", p.Outputs.Basic},
		{"outputs.advanced", p.Outputs.Advanced},
		{"outputs.basic_common", p.Outputs.BasicCommon},
		{"outputs.advanced_common", p.Outputs.AdvancedCommon},
	}
	for _, o := range outputs {
		if strings.TrimSpace(o.value) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     o.path,
				Message:  "output path must not be empty",
			})
		}
	}

	if p.Storage != nil {
		if _, ok := knownStorageKinds[p.Storage.Kind]; !ok {
			// Unknown kinds are warnings for forward compatibility; the
			// factory rejects them authoritatively at open time.
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "storage.kind",
				Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", p.Storage.Kind),
			})
		}
		if strings.TrimSpace(p.Storage.DB.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.dsn",
				Message:  "storage requires a non-empty dsn",
			})
		}
		if strings.TrimSpace(p.Storage.DB.Table) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.table",
				Message:  "storage requires a non-empty table name",
			})
		}
		if p.Storage.DB.BatchSize < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.batch_size",
				Message:  "batch_size must not be negative",
			})
		}
	}

	return issues
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
