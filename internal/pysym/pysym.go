// Package pysym extracts top-level classes, functions, and imports
// from Python source files using the tree-sitter Python grammar.
package pysym

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/bastet/filekitty/internal/output"
)

// Symbols lists what a Python module defines at its top level.
type Symbols struct {
	Classes   []string `json:"classes"`
	Functions []string `json:"functions"`
	Imports   []string `json:"imports"`
}

// Has reports whether name is a top-level class or function.
func (s *Symbols) Has(name string) bool {
	for _, c := range s.Classes {
		if c == name {
			return true
		}
	}
	for _, f := range s.Functions {
		if f == name {
			return true
		}
	}
	return false
}

// Parser wraps a tree-sitter parser configured for Python.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a Python symbol parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse extracts top-level symbols from Python source. The path is
// used only for error messages. Files with syntax errors are rejected
// with a user error.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*Symbols, error) {
	tree, root, err := p.parseRoot(ctx, path, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	syms := &Symbols{}
	imports := make(map[string]struct{})

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		def := definitionNode(child)

		switch {
		case def != nil && def.Type() == "class_definition":
			if name := nodeName(def, content); name != "" {
				syms.Classes = append(syms.Classes, name)
			}
		case def != nil && def.Type() == "function_definition":
			if name := nodeName(def, content); name != "" {
				syms.Functions = append(syms.Functions, name)
			}
		case isImport(child.Type()):
			imports[strings.TrimSpace(child.Content(content))] = struct{}{}
		}
	}

	for imp := range imports {
		syms.Imports = append(syms.Imports, imp)
	}
	sort.Strings(syms.Imports)
	return syms, nil
}

// Extract renders the source of the selected top-level classes and
// functions, prefixed with the file's imports, in the format used by
// the combined Markdown output:
//
//	# Code from: <header>
//	<modifiedLine>
//
//	# Imports (potentially includes more than needed):
//	...
//
//	# Selected Classes/Functions:
//	...
//
// When no selected symbol is found the output says so instead.
func (p *Parser) Extract(ctx context.Context, path string, content []byte, selected []string, header, modifiedLine string) (string, error) {
	tree, root, err := p.parseRoot(ctx, path, content)
	if err != nil {
		return "", err
	}
	defer tree.Close()

	want := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		want[name] = struct{}{}
	}

	imports := make(map[string]struct{})
	var blocks []string

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if isImport(child.Type()) {
			imports[strings.TrimSpace(child.Content(content))] = struct{}{}
			continue
		}
		def := definitionNode(child)
		if def == nil {
			continue
		}
		name := nodeName(def, content)
		if _, ok := want[name]; !ok {
			continue
		}
		// Use the outer node so decorators come along.
		blocks = append(blocks, strings.TrimSpace(child.Content(content)))
	}

	parts := []string{"# Code from: " + header, modifiedLine}

	if len(blocks) > 0 {
		if len(imports) > 0 {
			sorted := make([]string, 0, len(imports))
			for imp := range imports {
				sorted = append(sorted, imp)
			}
			sort.Strings(sorted)
			parts = append(parts, "\n# Imports (potentially includes more than needed):")
			parts = append(parts, sorted...)
			parts = append(parts, "")
		}
		parts = append(parts, "# Selected Classes/Functions:")
		parts = append(parts, strings.Join(blocks, "\n\n"))
	} else if len(selected) > 0 {
		parts = append(parts, "# No code found for selected items: "+strings.Join(selected, ", "))
	}

	return strings.TrimSpace(strings.Join(parts, "\n")) + "\n", nil
}

// parseRoot parses content and rejects files with syntax errors.
// The caller owns the returned tree and must Close it.
func (p *Parser) parseRoot(ctx context.Context, path string, content []byte) (*sitter.Tree, *sitter.Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, nil, output.NewSystemErrorWithCause("failed to parse "+filepath.Base(path), err)
	}
	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		return nil, nil, output.NewUserError("syntax error in " + filepath.Base(path))
	}
	return tree, root, nil
}

// definitionNode unwraps decorated_definition nodes, returning the
// inner class or function definition, or the node itself when it is
// already a definition. Returns nil for anything else.
func definitionNode(node *sitter.Node) *sitter.Node {
	switch node.Type() {
	case "class_definition", "function_definition":
		return node
	case "decorated_definition":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			inner := node.NamedChild(i)
			if t := inner.Type(); t == "class_definition" || t == "function_definition" {
				return inner
			}
		}
	}
	return nil
}

// nodeName returns the identifier of a class or function definition.
func nodeName(def *sitter.Node, content []byte) string {
	name := def.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(content)
}

// isImport reports whether a node type is an import statement.
func isImport(nodeType string) bool {
	switch nodeType {
	case "import_statement", "import_from_statement", "future_import_statement":
		return true
	}
	return false
}
