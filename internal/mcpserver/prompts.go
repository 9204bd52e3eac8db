package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptMeta holds the YAML frontmatter of an embedded prompt file.
type promptMeta struct {
	Description string `yaml:"description"`
}

// registerPrompts walks the embedded prompts directory and registers one
// MCP prompt per markdown file, named after the file.
func (s *Server) registerPrompts() {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		raw, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			continue
		}
		meta, body := splitPrompt(raw)

		s.server.AddPrompt(&mcp.Prompt{
			Name:        strings.TrimSuffix(entry.Name(), ".md"),
			Description: meta.Description,
		}, staticPromptHandler(meta.Description, body))
	}
}

// splitPrompt separates the leading `---` YAML block from the prompt body.
// Files without frontmatter, or with frontmatter that fails to parse, are
// served whole with an empty description.
func splitPrompt(raw []byte) (promptMeta, string) {
	var meta promptMeta
	if !bytes.HasPrefix(raw, []byte("---\n")) {
		return meta, string(raw)
	}
	rest := raw[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		return meta, string(raw)
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return promptMeta{}, string(raw)
	}
	body := strings.TrimPrefix(string(rest[end+len("\n---\n"):]), "\n")
	return meta, body
}

// staticPromptHandler serves a fixed body as a single user message.
func staticPromptHandler(description, body string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: description,
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: body}},
			},
		}, nil
	}
}
