package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// FunctionNode represents a parsed function or method.
type FunctionNode struct {
	Name       string
	StartLine  uint32
	EndLine    uint32
	ParamCount int
	Body       *sitter.Node
}

// Lines returns the inclusive line span of the function.
func (f FunctionNode) Lines() int {
	return int(f.EndLine - f.StartLine + 1)
}

// GetFunctions extracts all function definitions from parsed code.
func GetFunctions(result *ParseResult) []FunctionNode {
	var functions []FunctionNode
	root := result.Tree.RootNode()

	funcTypes := makeSet(getFunctionNodeTypes(result.Language))

	WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if funcTypes[nodeType] {
			if fn := extractFunction(node, source, result.Language); fn != nil {
				functions = append(functions, *fn)
			}
		}
		return true
	})

	return functions
}

// getFunctionNodeTypes returns the AST node types for functions in each language.
func getFunctionNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	case LangRust:
		return []string{"function_item"}
	case LangPython:
		return []string{"function_definition"}
	case LangTypeScript, LangJavaScript, LangTSX:
		return []string{"function_declaration", "function", "arrow_function", "method_definition"}
	case LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	case LangC, LangCPP:
		return []string{"function_definition"}
	case LangCSharp:
		return []string{"method_declaration", "constructor_declaration"}
	case LangRuby:
		return []string{"method", "singleton_method"}
	case LangPHP:
		return []string{"function_definition", "method_declaration"}
	default:
		return nil
	}
}

// extractFunction extracts function details from an AST node.
func extractFunction(node *sitter.Node, source []byte, lang Language) *FunctionNode {
	fn := &FunctionNode{
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
	}

	switch lang {
	case LangC, LangCPP:
		// C/C++ function names are in declarator
		if declNode := node.ChildByFieldName("declarator"); declNode != nil {
			if nameNode := declNode.ChildByFieldName("declarator"); nameNode != nil {
				fn.Name = GetNodeText(nameNode, source)
			}
			fn.ParamCount = countParameters(declNode.ChildByFieldName("parameters"), lang)
		}
	default:
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			fn.Name = GetNodeText(nameNode, source)
		}
		fn.ParamCount = countParameters(node.ChildByFieldName("parameters"), lang)
	}

	// Body field names vary by language
	fn.Body = node.ChildByFieldName("body")
	if fn.Body == nil {
		fn.Body = node.ChildByFieldName("block")
	}
	if fn.Body == nil {
		// Ruby uses body_statement for method bodies
		fn.Body = node.ChildByFieldName("body_statement")
	}

	return fn
}

// countParameters counts declared parameters in a parameter list node.
// Go parameter declarations may name several parameters in one child,
// so each declared name counts separately there.
func countParameters(params *sitter.Node, lang Language) int {
	if params == nil {
		return 0
	}

	count := 0
	for i := range int(params.NamedChildCount()) {
		child := params.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if lang == LangGo && child.Type() == "parameter_declaration" {
			names := 0
			for j := range int(child.NamedChildCount()) {
				if child.NamedChild(j).Type() == "identifier" {
					names++
				}
			}
			if names > 1 {
				count += names
				continue
			}
		}
		count++
	}
	return count
}

// ClassNode represents a parsed class, struct, or equivalent type container.
type ClassNode struct {
	Name      string
	StartLine uint32
	EndLine   uint32
	Members   int
}

// Lines returns the inclusive line span of the class.
func (c ClassNode) Lines() int {
	return int(c.EndLine - c.StartLine + 1)
}

// GetClasses extracts all class definitions from parsed code.
func GetClasses(result *ParseResult) []ClassNode {
	var classes []ClassNode
	root := result.Tree.RootNode()

	classTypes := makeSet(getClassNodeTypes(result.Language))
	memberTypes := makeSet(getFunctionNodeTypes(result.Language))

	WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if classTypes[nodeType] {
			cls := extractClass(node, source, memberTypes)
			if cls != nil {
				classes = append(classes, *cls)
			}
			return false // Don't descend into class body here
		}
		return true
	})

	return classes
}

// getClassNodeTypes returns the AST node types for classes in each language.
func getClassNodeTypes(lang Language) []string {
	switch lang {
	case LangRust:
		return []string{"impl_item"}
	case LangPython:
		return []string{"class_definition"}
	case LangTypeScript, LangJavaScript, LangTSX:
		return []string{"class_declaration", "class"}
	case LangJava:
		return []string{"class_declaration", "interface_declaration"}
	case LangCPP:
		return []string{"class_specifier", "struct_specifier"}
	case LangCSharp:
		return []string{"class_declaration", "interface_declaration", "struct_declaration"}
	case LangRuby:
		return []string{"class", "module"}
	case LangPHP:
		return []string{"class_declaration", "interface_declaration", "trait_declaration"}
	default:
		// Go has no class bodies; struct methods live at file scope.
		return nil
	}
}

// extractClass extracts class details from an AST node, counting member
// functions inside the class body.
func extractClass(node *sitter.Node, source []byte, memberTypes map[string]bool) *ClassNode {
	cls := &ClassNode{
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		cls.Name = GetNodeText(nameNode, source)
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		body = node
	}
	WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if n != body && memberTypes[nodeType] {
			cls.Members++
			return false
		}
		return true
	})

	return cls
}

// makeSet converts a slice to a map for O(1) lookups.
func makeSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
