package parser

import "strings"

// commentLeaders maps each language to the tokens that open a full-line
// comment. Block comment openers and continuation asterisks count so a
// comment block is excluded line by line.
var commentLeaders = map[Language][]string{
	LangGo:         {"//", "/*", "*"},
	LangRust:       {"//", "/*", "*"},
	LangPython:     {"#"},
	LangTypeScript: {"//", "/*", "*"},
	LangJavaScript: {"//", "/*", "*"},
	LangTSX:        {"//", "/*", "*"},
	LangJava:       {"//", "/*", "*"},
	LangC:          {"//", "/*", "*"},
	LangCPP:        {"//", "/*", "*"},
	LangCSharp:     {"//", "/*", "*"},
	LangRuby:       {"#"},
	LangPHP:        {"//", "#", "/*", "*"},
	LangBash:       {"#"},
}

// CountCodeLines counts the lines of text that are neither blank nor
// full-line comments, per the comment syntax of the language detected
// from path. Unrecognized extensions get no comment stripping; only
// blank lines are excluded.
func CountCodeLines(text, path string) int {
	leaders := commentLeaders[DetectLanguage(path)]

	count := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isCommentLine(trimmed, leaders) {
			continue
		}
		count++
	}
	return count
}

func isCommentLine(trimmed string, leaders []string) bool {
	for _, leader := range leaders {
		if strings.HasPrefix(trimmed, leader) {
			return true
		}
	}
	return false
}
