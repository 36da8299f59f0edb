package diagfmt

import (
	"encoding/json"
	"io"
	"net/url"
	"path/filepath"
	"sort"

	"lumen/internal/driver"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	ShortDescription *sarifMessage `json:"shortDescription,omitempty"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string            `json:"ruleId"`
	Level            string            `json:"level"`
	Message          sarifMessage      `json:"message"`
	Locations        []sarifLocation   `json:"locations,omitempty"`
	RelatedLocations []sarifLocation   `json:"relatedLocations,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
	Message          *sarifMessage `json:"message,omitempty"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn,omitempty"`
}

func sarifLevel(sev string) string {
	switch sev {
	case "ERROR":
		return "error"
	case "WARNING":
		return "warning"
	default:
		return "note"
	}
}

func sarifURI(file, base string) string {
	p := formatPath(file, PathModeRelative, base)
	if filepath.IsAbs(p) {
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
	}
	return filepath.ToSlash(p)
}

func sarifLocationOf(file string, line, col uint32, fallback, base string) sarifLocation {
	if file == "" {
		return sarifLocation{PhysicalLocation: sarifPhysical{ArtifactLocation: sarifArtifact{URI: filepath.ToSlash(fallback)}}}
	}
	loc := sarifLocation{PhysicalLocation: sarifPhysical{ArtifactLocation: sarifArtifact{URI: sarifURI(file, base)}}}
	if line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: line, StartColumn: col}
	}
	return loc
}

// Sarif writes the diagnostics of snaps as a single-run SARIF 2.1.0 log.
func Sarif(w io.Writer, snaps []*driver.Snapshot, meta SarifRunMeta) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion, Rules: []sarifRule{}}},
		Results: []sarifResult{},
	}
	rules := make(map[string]string)
	failed := false
	for _, snap := range snaps {
		for _, d := range snap.Diagnostics {
			if _, ok := rules[d.Code]; !ok || rules[d.Code] == "" {
				rules[d.Code] = d.Title
			}
			if d.IsError() {
				failed = true
			}
			res := sarifResult{
				RuleID:     d.Code,
				Level:      sarifLevel(d.Severity),
				Message:    sarifMessage{Text: d.Message},
				Locations:  []sarifLocation{sarifLocationOf(d.File, d.Line, d.Col, d.Location, meta.BaseDir)},
				Properties: map[string]string{"unit": snap.Unit},
			}
			for _, n := range d.Notes {
				rel := sarifLocationOf(n.File, n.Line, n.Col, n.Location, meta.BaseDir)
				rel.Message = &sarifMessage{Text: n.Message}
				res.RelatedLocations = append(res.RelatedLocations, rel)
			}
			run.Results = append(run.Results, res)
		}
	}
	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rule := sarifRule{ID: id}
		if title := rules[id]; title != "" {
			rule.ShortDescription = &sarifMessage{Text: title}
		}
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rule)
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: !failed}}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}
