package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/repolens/repolens/internal/service"
	"github.com/repolens/repolens/pkg/models"
)

// Tool input structures

// AnalyzeRepositoryInput selects a repository and the facets to compute.
type AnalyzeRepositoryInput struct {
	RepoPath string   `json:"repo_path" jsonschema:"Path to the repository to analyze."`
	Branch   string   `json:"branch,omitempty" jsonschema:"Branch to analyze. Default main."`
	Depth    int      `json:"depth,omitempty" jsonschema:"Number of commits to walk. Default 100, clamped to the configured maximum."`
	Facets   []string `json:"facets,omitempty" jsonschema:"Facets to compute: metrics, smells, contributors, hotspots. Default all."`
}

// GetCodeMetricsInput selects a single file and the metrics to return.
type GetCodeMetricsInput struct {
	FilePath    string   `json:"file_path" jsonschema:"Path to the source file."`
	MetricTypes []string `json:"metric_types,omitempty" jsonschema:"Metrics to return: lines_of_code, cyclomatic_complexity, maintainability_index, technical_debt. Default all."`
}

// DetectSmellsInput selects a repository and detection sensitivity.
type DetectSmellsInput struct {
	RepoPath    string `json:"repo_path" jsonschema:"Path to the repository to scan."`
	Sensitivity string `json:"sensitivity,omitempty" jsonschema:"Detection sensitivity: low, medium, or high. Default medium."`
}

// AnalyzeContributorsInput selects a repository and a time window.
type AnalyzeContributorsInput struct {
	RepoPath  string `json:"repo_path" jsonschema:"Path to the repository to analyze."`
	TimeRange string `json:"time_range,omitempty" jsonschema:"Window such as 30d, 6m, 1y, or all. Default all."`
}

// GetHotspotsInput selects a repository and a frequency threshold.
type GetHotspotsInput struct {
	RepoPath  string  `json:"repo_path" jsonschema:"Path to the repository to analyze."`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"Minimum normalized change frequency (0.0-1.0). Default 0.8, clamped."`
}

// GenerateReportInput selects a stored analysis and the report shape.
type GenerateReportInput struct {
	AnalysisID string   `json:"analysis_id" jsonschema:"ID returned by analyze_repository."`
	Format     string   `json:"format,omitempty" jsonschema:"Report format: json or text. Default json."`
	Sections   []string `json:"sections,omitempty" jsonschema:"Sections to include: repository_info, code_metrics, code_smells, contributors, hotspots. Default all."`
}

// envelope is the wire shape every tool call returns.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *toolFault `json:"error,omitempty"`
}

type toolFault struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func toolResult(data any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(envelope{Success: true, Data: data}, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(raw)},
		},
	}, nil, nil
}

func toolError(err error) (*mcp.CallToolResult, any, error) {
	raw, merr := json.MarshalIndent(envelope{
		Success: false,
		Error: &toolFault{
			Kind:    string(models.KindOf(err)),
			Message: err.Error(),
		},
	}, "", "  ")
	if merr != nil {
		return nil, nil, merr
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(raw)},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func (s *Server) handleAnalyzeRepository(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeRepositoryInput) (*mcp.CallToolResult, any, error) {
	snap, err := s.svc.AnalyzeRepository(ctx, service.AnalyzeRequest{
		RepoPath: input.RepoPath,
		Branch:   input.Branch,
		Depth:    input.Depth,
		Facets:   input.Facets,
	})
	if err != nil {
		return toolError(err)
	}
	return toolResult(snap)
}

func (s *Server) handleGetCodeMetrics(ctx context.Context, req *mcp.CallToolRequest, input GetCodeMetricsInput) (*mcp.CallToolResult, any, error) {
	result, err := s.svc.GetCodeMetrics(ctx, input.FilePath, input.MetricTypes)
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleDetectSmells(ctx context.Context, req *mcp.CallToolRequest, input DetectSmellsInput) (*mcp.CallToolResult, any, error) {
	result, err := s.svc.DetectSmells(ctx, input.RepoPath, input.Sensitivity)
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleAnalyzeContributors(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeContributorsInput) (*mcp.CallToolResult, any, error) {
	result, err := s.svc.AnalyzeContributors(ctx, input.RepoPath, input.TimeRange)
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleGetHotspots(ctx context.Context, req *mcp.CallToolRequest, input GetHotspotsInput) (*mcp.CallToolResult, any, error) {
	result, err := s.svc.GetHotspots(ctx, input.RepoPath, input.Threshold)
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}

func (s *Server) handleGenerateReport(ctx context.Context, req *mcp.CallToolRequest, input GenerateReportInput) (*mcp.CallToolResult, any, error) {
	result, err := s.svc.GenerateReport(input.AnalysisID, input.Format, input.Sections)
	if err != nil {
		return toolError(err)
	}
	return toolResult(result)
}
