// Package report writes check results in the Allure results format.
package report

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Status values understood by Allure.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusBroken = "broken"
)

// Result is one test case in Allure format.
type Result struct {
	UUID          string        `json:"uuid"`
	HistoryID     string        `json:"historyId"`
	FullName      string        `json:"fullName"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Status        string        `json:"status"`
	Stage         string        `json:"stage"`
	Start         int64         `json:"start"`
	Stop          int64         `json:"stop"`
	Labels        []Label       `json:"labels"`
	StatusDetails StatusDetails `json:"statusDetails"`
	Steps         []Step        `json:"steps"`
	Attachments   []Attachment  `json:"attachments"`
}

// Step is a named stage of a test case.
type Step struct {
	Name          string        `json:"name"`
	Status        string        `json:"status"`
	Stage         string        `json:"stage"`
	Start         int64         `json:"start"`
	Stop          int64         `json:"stop"`
	StatusDetails StatusDetails `json:"statusDetails"`
	Steps         []Step        `json:"steps"`
	Attachments   []Attachment  `json:"attachments"`
}

// Attachment references a file written next to the results.
type Attachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type StatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// Category groups failures in the report by message.
type Category struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
	MessageRegex    string   `json:"messageRegex"`
}

type Executor struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	BuildName string `json:"buildName,omitempty"`
}

// Writer places result files in a single allure-results directory.
type Writer struct {
	dir string
}

// NewWriter creates dir if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("allure results dir is not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create allure results dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the results directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteResult validates r and writes it as <uuid>-result.json, assigning a
// uuid when missing.
func (w *Writer) WriteResult(r *Result) error {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	if r.HistoryID == "" {
		r.HistoryID = historyID(r.FullName)
	}
	if r.Stage == "" {
		r.Stage = "finished"
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", r.UUID, err)
	}
	if err := ValidateResult(data); err != nil {
		return fmt.Errorf("result %q: %w", r.FullName, err)
	}
	name := r.UUID + "-result.json"
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteAttachment stores data under a generated name and returns the reference
// to put on a result or step.
func (w *Writer) WriteAttachment(name, mimeType, ext string, data []byte) (Attachment, error) {
	source := uuid.NewString() + "-attachment"
	if ext != "" {
		source += "." + strings.TrimPrefix(ext, ".")
	}
	if err := os.WriteFile(filepath.Join(w.dir, source), data, 0o644); err != nil {
		return Attachment{}, fmt.Errorf("write attachment %q: %w", name, err)
	}
	return Attachment{Name: name, Source: source, Type: mimeType}, nil
}

// WriteEnvironment writes environment.properties with keys in sorted order.
func (w *Writer) WriteEnvironment(env map[string]string) error {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, env[k])
	}

	path := filepath.Join(w.dir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}
	return nil
}

// DefaultCategories sorts failures into the kinds a UI check produces.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Timed out waiting", MatchedStatuses: []string{StatusBroken}, MessageRegex: "(?is).*timeout.*"},
		{Name: "Element not visible", MatchedStatuses: []string{StatusFailed, StatusBroken}, MessageRegex: "(?is).*not visible.*|.*not present.*"},
		{Name: "Unexpected value", MatchedStatuses: []string{StatusFailed}, MessageRegex: "(?is).*expected.*got.*"},
		{Name: "Browser session", MatchedStatuses: []string{StatusFailed, StatusBroken}, MessageRegex: "(?is).*could not (install|start|launch|create).*"},
	}
}

// WriteCategories writes categories.json.
func (w *Writer) WriteCategories(categories []Category) error {
	return w.writeJSON("categories.json", categories)
}

// WriteExecutor writes executor.json.
func (w *Writer) WriteExecutor(e Executor) error {
	return w.writeJSON("executor.json", e)
}

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// historyID keeps the same id for the same case across runs so Allure can
// show its history.
func historyID(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}
