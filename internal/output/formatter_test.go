package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/repolens/repolens/pkg/models"
)

func TestTableRenderText(t *testing.T) {
	table := NewTable("Hot Files", []string{"Path", "Commits"}, [][]string{
		{"main.go", "12"},
		{"util.go", "3"},
	}, nil, nil)

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Hot Files", "main.go", "util.go", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableRenderDataFromRows(t *testing.T) {
	table := NewTable("", []string{"Path", "Commits"}, [][]string{
		{"main.go", "12"},
	}, nil, nil)

	data, ok := table.RenderData().([]map[string]string)
	if !ok {
		t.Fatalf("RenderData() returned %T", table.RenderData())
	}
	if len(data) != 1 || data[0]["Path"] != "main.go" || data[0]["Commits"] != "12" {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestTableRenderDataPrefersWrapped(t *testing.T) {
	wrapped := map[string]int{"files": 2}
	table := NewTable("", nil, nil, nil, wrapped)

	if got := table.RenderData(); got == nil {
		t.Fatal("RenderData() returned nil")
	} else if m, ok := got.(map[string]int); !ok || m["files"] != 2 {
		t.Errorf("RenderData() = %v, want wrapped data", got)
	}
}

func TestSectionRenderText(t *testing.T) {
	section := &Section{
		Title:   "Repository",
		Content: "path: /repo",
		Sections: []Section{
			{Title: "Branch", Content: "main"},
		},
	}

	var buf bytes.Buffer
	if err := section.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Repository\n==========") {
		t.Errorf("top-level title should be underlined with '=':\n%s", out)
	}
	if !strings.Contains(out, "Branch\n------") {
		t.Errorf("nested title should be underlined with '-':\n%s", out)
	}
}

func TestFormatterJSONOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(models.ReportJSON, path, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.Colored() {
		t.Error("file output should disable color")
	}

	table := NewTable("", []string{"K"}, [][]string{{"v"}}, nil, map[string]string{"k": "v"})
	if err := f.Output(table); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["k"] != "v" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestFormatterTextOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	f, err := NewFormatter(models.ReportText, path, false)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	if err := f.Output(&Section{Title: "Summary", Content: "2 files"}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	f.Close()

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "2 files") {
		t.Errorf("text output missing content: %q", raw)
	}
}

func TestCompoundRenderData(t *testing.T) {
	c := &Compound{
		Title: "Report",
		Sections: []Renderable{
			&Section{Title: "A", Data: map[string]int{"n": 1}},
			NewTable("", []string{"X"}, [][]string{{"y"}}, nil, nil),
		},
	}

	data, ok := c.RenderData().(map[string]any)
	if !ok {
		t.Fatalf("RenderData() returned %T", c.RenderData())
	}
	parts, ok := data["sections"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("sections = %v", data["sections"])
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Findings", []string{"Path", "Count"}, [][]string{
		{"a.go", "2"},
		{"b|c.go", "1"},
	}, []string{"Total", "3"}, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"## Findings",
		"| Path | Count |",
		"| --- | --- |",
		"| a.go | 2 |",
		"| b\\|c.go | 1 |",
		"| Total | 3 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown table missing %q:\n%s", want, got)
		}
	}
}

func TestSectionRenderMarkdownNesting(t *testing.T) {
	section := &Section{
		Title:   "Overview",
		Content: "top level",
		Sections: []Section{
			{Title: "Details", Content: "nested"},
		},
	}

	var buf bytes.Buffer
	if err := section.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	got := buf.String()

	if !strings.Contains(got, "## Overview") {
		t.Errorf("missing top heading:\n%s", got)
	}
	if !strings.Contains(got, "### Details") {
		t.Errorf("missing nested heading:\n%s", got)
	}
}

func TestFormatterOutputMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	f, err := NewFormatter(models.ReportMarkdown, path, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	table := NewTable("Report", []string{"Key"}, [][]string{{"value"}}, nil, nil)
	if err := f.Output(table); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "| Key |") {
		t.Errorf("markdown file missing table header:\n%s", data)
	}
}
