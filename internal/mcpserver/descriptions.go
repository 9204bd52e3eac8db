package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and key thresholds.

func describeAnalyzeRepository() string {
	return `Runs the full analysis pipeline over a git repository and stores an immutable snapshot.

USE WHEN:
- Getting an overall picture of a codebase's health
- You need an analysis_id for generate_report
- Combining metrics, smells, contributors, and hotspots in one pass

INTERPRETING RESULTS:
- analysis_id: pass to generate_report to render the stored snapshot
- partial: true means one or more facets failed; see warnings for details
- Facet failures never fail the whole run, the surviving facets are still trustworthy
- depth limits how many commits feed contributor and hotspot statistics

RESULTS RETURNED:
- repository: path, branch, commit count, size, last commit
- metrics, smells, contributors, hotspots: one block per requested facet
- warnings: per-facet and per-file problems encountered along the way`
}

func describeGetCodeMetrics() string {
	return `Computes code quality metrics for a single source file.

USE WHEN:
- Checking one file before or after a refactor
- You need numbers for a specific file without a full repository pass

INTERPRETING RESULTS:
- lines_of_code: physical lines including blanks and comments
- cyclomatic_complexity: 1 + decision points; > 10 is hard to test
- maintainability_index: 0-100, higher is better; < 30 is a refactoring candidate
- technical_debt: abstract effort score combining complexity and size

RESULTS RETURNED:
- One value per requested metric kind, scoped to the file path`
}

func describeDetectSmells() string {
	return `Scans a repository's tracked files for structural code smells.

USE WHEN:
- Auditing code quality before a release or review
- Finding refactoring candidates across a whole codebase

INTERPRETING RESULTS:
- Kinds: long_method, long_parameter_list, duplicate_code, complex_conditional, large_class
- Severity scales with how far past the threshold a finding is: low < medium < high
- Sensitivity low flags only egregious cases, high flags borderline ones
- Duplicate findings list every location sharing the same normalized block

RESULTS RETURNED:
- findings: per-instance records with location, severity, and a suggestion
- smells_by_kind: the same findings grouped for quick counting`
}

func describeAnalyzeContributors() string {
	return `Aggregates per-author commit statistics inside a time window.

USE WHEN:
- Understanding who owns a codebase and how concentrated that ownership is
- Checking recent activity with windows like 30d or 6m

INTERPRETING RESULTS:
- ownership_percentage: the author's share of in-window commits; all shares sum to 100
- A single author holding > 80% signals a bus-factor risk
- first_commit and last_commit frame each author's active span
- An empty contributor list means no commits fell inside the window

RESULTS RETURNED:
- contributors sorted by commit count with churn and files touched
- total_commits and total_contributors for the window`
}

func describeGetHotspots() string {
	return `Ranks files by combined change frequency and code risk.

USE WHEN:
- Prioritizing refactoring or test investment
- Finding files where churn and complexity overlap

INTERPRETING RESULTS:
- change_frequency: commits touching the file relative to the busiest file (0.0-1.0)
- risk_score grows with both frequency and complexity; tackle the top entries first
- threshold filters out files changing less often than the given fraction
- Lower the threshold (e.g. 0.5) to widen the candidate set

RESULTS RETURNED:
- hotspots sorted by risk, then commit count, then path`
}

func describeGenerateReport() string {
	return `Renders a stored analysis snapshot as a JSON or plain-text report.

USE WHEN:
- Presenting analyze_repository results to a human
- Extracting a subset of sections from a completed analysis

INTERPRETING RESULTS:
- Sections appear in canonical order regardless of request order
- A section whose facet was not analyzed is noted in text and omitted from JSON
- SnapshotNotFound means the id expired from the bounded store; re-run analyze_repository

RESULTS RETURNED:
- content: the rendered report
- sections: the normalized section list that was rendered`
}
