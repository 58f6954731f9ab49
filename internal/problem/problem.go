// Package problem defines the problem record the pipeline solves against.
// A problem is loaded once and read-only afterwards.
package problem

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// SampleTest is a labeled (input, expected output) pair.
type SampleTest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Problem describes one computational problem: its statement, the labeled
// sample tests used by the self-debug loop, and the unlabeled additional
// inputs used by the oracle and consensus stages.
type Problem struct {
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	SampleTests      []SampleTest `json:"sample_tests"`
	AdditionalInputs []string     `json:"-"`
}

// problemFile mirrors the on-disk JSON layout, where additional tests
// are objects carrying only an input field.
type problemFile struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	SampleTests []SampleTest `json:"sample_tests"`
	Additional  []struct {
		Input string `json:"input"`
	} `json:"additional_tests"`
}

// Load reads a problem from a JSON file.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a problem from JSON bytes.
func Parse(data []byte) (*Problem, error) {
	var pf problemFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse problem: %w", err)
	}
	if strings.TrimSpace(pf.Title) == "" {
		return nil, fmt.Errorf("problem has no title")
	}

	p := &Problem{
		Title:       pf.Title,
		Description: pf.Description,
		SampleTests: pf.SampleTests,
	}
	for _, t := range pf.Additional {
		p.AdditionalInputs = append(p.AdditionalInputs, t.Input)
	}
	return p, nil
}

// Statement returns the problem text handed to the generator.
func (p *Problem) Statement() string {
	return p.Title + "\n\n" + p.Description
}
