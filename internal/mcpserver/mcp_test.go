package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/internal/service"
	"github.com/repolens/repolens/internal/vcs"
	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
)

type stubProvider struct {
	facts *vcs.Facts
}

func (p *stubProvider) Facts(ctx context.Context, repoPath string, opts vcs.FactsOptions) (*vcs.Facts, error) {
	return p.facts, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = false
	svc := service.New(cfg, service.WithProvider(&stubProvider{facts: &vcs.Facts{
		Info: models.RepositoryInfo{Path: "/repo", Branch: "main", TotalCommits: 1, LastCommit: base},
		Commits: []models.CommitFact{
			{Hash: "a", AuthorName: "Alice", AuthorEmail: "alice@x.com", Timestamp: base,
				Files: map[string]models.FileChange{"main.go": {LinesAdded: 7}}},
		},
		Files: []models.FileFact{
			{Path: "main.go", Text: "package main\n\nfunc main() {}\n", Size: 29},
		},
	}}))
	return NewServer(svc, "test")
}

func decodeEnvelope(t *testing.T, result *mcp.CallToolResult) envelope {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "tool content should be text")

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(text.Text), &env))
	return env
}

func TestAnalyzeRepositoryTool(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.handleAnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{
		RepoPath: "/repo",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	env := decodeEnvelope(t, result)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["analysis_id"])
}

func TestAnalyzeRepositoryToolRejectsBadFacet(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.handleAnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{
		RepoPath: "/repo",
		Facets:   []string{"vibes"},
	})
	require.NoError(t, err)
	require.True(t, result.IsError)

	env := decodeEnvelope(t, result)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(models.ErrInvalidParameter), env.Error.Kind)
}

func TestGenerateReportToolRoundTrip(t *testing.T) {
	s := newTestServer(t)

	analyzed, _, err := s.handleAnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{
		RepoPath: "/repo",
	})
	require.NoError(t, err)
	env := decodeEnvelope(t, analyzed)
	id := env.Data.(map[string]any)["analysis_id"].(string)

	// The snapshot survives across tool calls on the same server.
	result, _, err := s.handleGenerateReport(context.Background(), nil, GenerateReportInput{
		AnalysisID: id,
		Format:     "text",
		Sections:   []string{"repository_info", "hotspots"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	reportEnv := decodeEnvelope(t, result)
	assert.True(t, reportEnv.Success)
	data := reportEnv.Data.(map[string]any)
	assert.Contains(t, data["content"], "Repository")
}

func TestGenerateReportToolUnknownID(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.handleGenerateReport(context.Background(), nil, GenerateReportInput{
		AnalysisID: "missing",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)

	env := decodeEnvelope(t, result)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(models.ErrSnapshotNotFound), env.Error.Kind)
}

func TestDetectSmellsToolBadSensitivity(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.handleDetectSmells(context.Background(), nil, DetectSmellsInput{
		RepoPath:    "/repo",
		Sensitivity: "extreme",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestGetHotspotsToolClampsThreshold(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.handleGetHotspots(context.Background(), nil, GetHotspotsInput{
		RepoPath:  "/repo",
		Threshold: 12.0,
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	env := decodeEnvelope(t, result)
	data := env.Data.(map[string]any)
	assert.Equal(t, 1.0, data["threshold"])
}

func TestSplitPrompt(t *testing.T) {
	content := []byte("---\ndescription: A test prompt\n---\n\nBody text here.")
	meta, body := splitPrompt(content)
	assert.Equal(t, "A test prompt", meta.Description)
	assert.Equal(t, "Body text here.", body)
}

func TestSplitPromptNoFrontmatter(t *testing.T) {
	content := []byte("Just a body, no frontmatter.")
	meta, body := splitPrompt(content)
	assert.Empty(t, meta.Description)
	assert.Equal(t, string(content), body)
}

func TestEmbeddedPromptsParse(t *testing.T) {
	entries, err := promptFiles.ReadDir("prompts")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		content, err := promptFiles.ReadFile("prompts/" + entry.Name())
		require.NoError(t, err)
		meta, body := splitPrompt(content)
		assert.NotEmpty(t, meta.Description, "prompt %s should carry a description", entry.Name())
		assert.NotEmpty(t, body, "prompt %s should carry a body", entry.Name())
	}
}

func TestGenerateManifest(t *testing.T) {
	raw, err := GenerateManifest("1.2.3")
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "io.github.repolens/repolens", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	require.Len(t, m.Packages, 1)
	assert.Equal(t, "stdio", m.Packages[0].Transport.Type)
}
