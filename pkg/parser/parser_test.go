package parser

import (
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.go", LangGo},
		{"pkg/parser/parser.go", LangGo},
		{"main.rs", LangRust},
		{"script.py", LangPython},
		{"types.pyi", LangPython},
		{"app.ts", LangTypeScript},
		{"component.tsx", LangTSX},
		{"script.js", LangJavaScript},
		{"module.mjs", LangJavaScript},
		{"component.jsx", LangTSX}, // JSX uses TSX parser
		{"Main.java", LangJava},
		{"main.c", LangC},
		{"header.h", LangC},
		{"main.cpp", LangCPP},
		{"header.hpp", LangCPP},
		{"Program.cs", LangCSharp},
		{"script.rb", LangRuby},
		{"index.php", LangPHP},
		{"script.sh", LangBash},
		{"Dockerfile", LangBash},
		{"file.txt", LangUnknown},
		{"file.md", LangUnknown},
		{"file", LangUnknown},
		{"Main.GO", LangGo},
		{"SCRIPT.PY", LangPython},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := DetectLanguage(tt.path)
			if got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestGetTreeSitterLanguage(t *testing.T) {
	langs := []Language{
		LangGo, LangRust, LangPython, LangTypeScript, LangTSX,
		LangJavaScript, LangJava, LangC, LangCPP, LangCSharp,
		LangRuby, LangPHP, LangBash,
	}

	for _, lang := range langs {
		t.Run(string(lang), func(t *testing.T) {
			tsLang, err := GetTreeSitterLanguage(lang)
			if err != nil {
				t.Errorf("GetTreeSitterLanguage(%v) returned error: %v", lang, err)
			}
			if tsLang == nil {
				t.Errorf("GetTreeSitterLanguage(%v) returned nil", lang)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := GetTreeSitterLanguage(LangUnknown)
		if err == nil {
			t.Error("GetTreeSitterLanguage(LangUnknown) should return error")
		}
	})
}

func TestParseGo(t *testing.T) {
	p := New()
	defer p.Close()

	source := []byte(`package main

func add(a, b int) int {
	return a + b
}

func greet(name string) string {
	return "hello " + name
}
`)

	result, err := p.Parse(source, LangGo, "main.go")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if result.Tree == nil {
		t.Fatal("Parse() returned nil tree")
	}
	if result.Language != LangGo {
		t.Errorf("Language = %v, want %v", result.Language, LangGo)
	}
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sample.py")
	source := `def fetch(url, timeout, retries):
    return url
`
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	p := New()
	defer p.Close()

	result, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if result.Language != LangPython {
		t.Errorf("Language = %v, want %v", result.Language, LangPython)
	}

	fns := GetFunctions(result)
	if len(fns) != 1 {
		t.Fatalf("GetFunctions() returned %d functions, want 1", len(fns))
	}
	if fns[0].Name != "fetch" {
		t.Errorf("function name = %q, want fetch", fns[0].Name)
	}
	if fns[0].ParamCount != 3 {
		t.Errorf("ParamCount = %d, want 3", fns[0].ParamCount)
	}
}

func TestParseFileUnsupported(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	p := New()
	defer p.Close()

	if _, err := p.ParseFile(path); err == nil {
		t.Error("ParseFile() should return error for unsupported language")
	}
}

func TestGetFunctionsGo(t *testing.T) {
	p := New()
	defer p.Close()

	source := []byte(`package main

func one() {}

func two(a int, b string, c bool) {
	_ = a
}

type T struct{}

func (t *T) method(x, y int) int {
	return x + y
}
`)

	result, err := p.Parse(source, LangGo, "main.go")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	fns := GetFunctions(result)
	if len(fns) != 3 {
		t.Fatalf("GetFunctions() returned %d functions, want 3", len(fns))
	}

	byName := map[string]FunctionNode{}
	for _, fn := range fns {
		byName[fn.Name] = fn
	}

	if fn, ok := byName["one"]; !ok || fn.ParamCount != 0 {
		t.Errorf("one: got %+v, want 0 params", fn)
	}
	if fn, ok := byName["two"]; !ok || fn.ParamCount != 3 {
		t.Errorf("two: got %d params, want 3", fn.ParamCount)
	}
	if fn, ok := byName["method"]; !ok || fn.ParamCount != 2 {
		t.Errorf("method: got %d params, want 2", fn.ParamCount)
	}
}

func TestFunctionLines(t *testing.T) {
	fn := FunctionNode{StartLine: 10, EndLine: 60}
	if got := fn.Lines(); got != 51 {
		t.Errorf("Lines() = %d, want 51", got)
	}
	fn = FunctionNode{StartLine: 5, EndLine: 5}
	if got := fn.Lines(); got != 1 {
		t.Errorf("Lines() = %d, want 1", got)
	}
}

func TestGetClassesPython(t *testing.T) {
	p := New()
	defer p.Close()

	source := []byte(`class Account:
    def deposit(self, amount):
        pass

    def withdraw(self, amount):
        pass

class Empty:
    pass
`)

	result, err := p.Parse(source, LangPython, "account.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	classes := GetClasses(result)
	if len(classes) != 2 {
		t.Fatalf("GetClasses() returned %d classes, want 2", len(classes))
	}

	byName := map[string]ClassNode{}
	for _, cls := range classes {
		byName[cls.Name] = cls
	}

	if cls := byName["Account"]; cls.Members != 2 {
		t.Errorf("Account members = %d, want 2", cls.Members)
	}
	if cls := byName["Empty"]; cls.Members != 0 {
		t.Errorf("Empty members = %d, want 0", cls.Members)
	}
}

func TestWalk(t *testing.T) {
	p := New()
	defer p.Close()

	source := []byte(`package main

func main() {
	if true {
		println("hi")
	}
}
`)

	result, err := p.Parse(source, LangGo, "main.go")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var nodeCount, ifCount int
	Walk(result.Tree.RootNode(), source, func(n *sitter.Node, _ []byte) bool {
		nodeCount++
		return true
	})
	if nodeCount == 0 {
		t.Error("Walk() visited no nodes")
	}

	WalkTyped(result.Tree.RootNode(), source, func(_ *sitter.Node, nodeType string, _ []byte) bool {
		if nodeType == "if_statement" {
			ifCount++
		}
		return true
	})
	if ifCount != 1 {
		t.Errorf("found %d if_statement nodes, want 1", ifCount)
	}
}

func TestCountCodeLines(t *testing.T) {
	tests := []struct {
		name string
		path string
		text string
		want int
	}{
		{
			name: "python blanks and comments stripped",
			path: "script.py",
			text: "import os\n\n# setup\n\nx = 1\n# done\n",
			want: 2,
		},
		{
			name: "go comment block stripped",
			path: "main.go",
			text: "package main\n\n/*\n * licensed\n */\nfunc main() {}\n",
			want: 2,
		},
		{
			name: "unknown extension keeps comment-looking lines",
			path: "notes.custom",
			text: "# heading\n\nbody line\n",
			want: 2,
		},
		{
			name: "empty file",
			path: "empty.go",
			text: "",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountCodeLines(tt.text, tt.path); got != tt.want {
				t.Errorf("CountCodeLines() = %d, want %d", got, tt.want)
			}
		})
	}
}
