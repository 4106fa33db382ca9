package results

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary records what a run read, counted and wrote.
type Summary struct {
	RunID   string             `yaml:"run_id"`
	Command string             `yaml:"command"`
	Note    string             `yaml:"note,omitempty"`
	Started time.Time          `yaml:"started"`
	Elapsed string             `yaml:"elapsed"`
	Inputs  []string           `yaml:"inputs"`
	Outputs []string           `yaml:"outputs"`
	Counts  map[string]int     `yaml:"counts,omitempty"`
	Values  map[string]float64 `yaml:"values,omitempty"`
}

// NewSummary starts a summary for command.
func NewSummary(runID, command, note string) *Summary {
	return &Summary{
		RunID:   runID,
		Command: command,
		Note:    note,
		Started: time.Now().UTC(),
		Counts:  map[string]int{},
		Values:  map[string]float64{},
	}
}

// Input records a file that was read.
func (s *Summary) Input(path string) { s.Inputs = append(s.Inputs, path) }

// Output records a file that was written.
func (s *Summary) Output(path string) { s.Outputs = append(s.Outputs, path) }

// Write stamps the elapsed time and writes the summary as YAML.
func (s *Summary) Write(path string) error {
	s.Elapsed = time.Since(s.Started).Round(time.Millisecond).String()
	out, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// ReadSummary loads a summary written by Write.
func ReadSummary(path string) (*Summary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
