package metrics

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/repolens/repolens/pkg/parser"
)

// CountDecisionPoints counts branching constructs for the cyclomatic
// estimate. Exported for use by the smell detectors.
func CountDecisionPoints(node *sitter.Node, source []byte, lang parser.Language) int {
	count := 0

	decisionTypes := makeSet(getDecisionNodeTypes(lang))

	parser.WalkTyped(node, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if decisionTypes[nodeType] {
			count++
		}
		// Logical operators (&&, ||) are additional decision points
		if nodeType == "binary_expression" || nodeType == "logical_expression" ||
			nodeType == "boolean_operator" {
			op := getOperator(n, src)
			if op == "&&" || op == "||" || op == "and" || op == "or" {
				count++
			}
		}
		return true
	})

	return count
}

// getDecisionNodeTypes returns AST node types that represent decision points.
func getDecisionNodeTypes(lang parser.Language) []string {
	common := []string{
		"if_statement",
		"if_expression",
		"while_statement",
		"while_expression",
		"for_statement",
		"for_expression",
		"case_statement",
		"catch_clause",
		"ternary_expression",
		"conditional_expression",
	}

	switch lang {
	case parser.LangGo:
		return append(common, "select_statement", "type_switch_statement", "expression_switch_statement")
	case parser.LangRust:
		return append(common, "match_expression", "loop_expression", "if_let_expression")
	case parser.LangPython:
		return append(common, "elif_clause", "except_clause", "with_statement", "comprehension")
	case parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		return append(common, "switch_statement", "do_statement")
	case parser.LangJava, parser.LangCSharp:
		return append(common, "switch_statement", "switch_expression", "do_statement", "enhanced_for_statement")
	case parser.LangC, parser.LangCPP:
		return append(common, "switch_statement", "do_statement")
	case parser.LangRuby:
		// Ruby uses different node names than most languages
		return []string{"if", "elsif", "unless", "while", "until", "for", "case", "when", "rescue", "conditional"}
	case parser.LangPHP:
		return append(common, "switch_statement", "elseif_clause")
	default:
		return common
	}
}

// getOperator extracts the operator from a binary expression node.
func getOperator(node *sitter.Node, source []byte) string {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child.Type() == "&&" || child.Type() == "||" ||
			child.Type() == "and" || child.Type() == "or" {
			return child.Type()
		}
		if child.IsNamed() && child.Type() == "operator" {
			return parser.GetNodeText(child, source)
		}
	}
	return ""
}

// nestingTypesSet holds the control structures that count toward nesting
// depth. Blocks and function bodies do not count; only branches and loops.
var nestingTypesSet = makeSet([]string{
	"if_statement", "if_expression", "if", "unless", "elif_clause",
	"while_statement", "while_expression", "while", "until",
	"for_statement", "for_expression", "for",
	"switch_statement", "match_expression", "case",
	"expression_switch_statement", "type_switch_statement",
	"try_statement", "begin", "do_statement",
})

// MaxNesting finds the maximum control-structure nesting depth below node.
// Exported for use by the smell detectors.
func MaxNesting(node *sitter.Node, currentDepth int) int {
	maxDepth := currentDepth

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		childType := child.Type()

		var childMax int
		if nestingTypesSet[childType] {
			childMax = MaxNesting(child, currentDepth+1)
		} else {
			childMax = MaxNesting(child, currentDepth)
		}

		if childMax > maxDepth {
			maxDepth = childMax
		}
	}

	return maxDepth
}

// decisionKeywords drive the text fallback for languages without a grammar.
var decisionKeywords = makeSet([]string{
	"if", "elif", "elsif", "else if", "for", "foreach", "while", "until",
	"case", "when", "catch", "except", "rescue", "unless",
})

// EstimateDecisions counts branching keywords in raw text. Used as a
// fallback cyclomatic signal for files no grammar covers.
func EstimateDecisions(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		for _, tok := range strings.FieldsFunc(trimmed, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '(' || r == ')' || r == '{' || r == '}' || r == ';' || r == ':'
		}) {
			if decisionKeywords[tok] {
				count++
			}
		}
		count += strings.Count(trimmed, "&&")
		count += strings.Count(trimmed, "||")
	}
	return count
}

// makeSet converts a slice to a map for O(1) lookups.
func makeSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
