package pysrc

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"docstitch/internal/domain"
)

// Tree is an arena of documentable units built from one parse of a file.
// Nodes are addressed by index; node 0 is always the module. Insertions are
// recorded on the arena and applied in a single pass by Serialize, so the
// emitted text reflects every accumulated insertion.
type Tree struct {
	src      []byte
	filename string
	nodes    []node
	changed  bool
}

type node struct {
	kind      domain.UnitKind
	name      string
	signature string
	span      domain.Span
	bodyStart int    // byte offset of the first body statement, -1 if unknown
	indent    string // indentation for an inserted docstring line
	inline    bool   // body shares the header line (def f(): pass)
	doc       *string
	params    []string
	children  []int
	insert    string // rendered docstring literal pending insertion
}

// Len returns the number of units in the arena, the module included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Changed reports whether at least one insertion has been recorded.
func (t *Tree) Changed() bool {
	return t.changed
}

// Source returns the original, unmodified source text.
func (t *Tree) Source() []byte {
	return t.src
}

// Snippet returns the exact original source text of the unit at index i.
// The second result is false when the unit has no usable span, which is
// always the case for the module sentinel.
func (t *Tree) Snippet(i int) (string, bool) {
	if i < 0 || i >= len(t.nodes) {
		return "", false
	}
	n := t.nodes[i]
	if n.span.IsZero() || n.span.StartByte >= n.span.EndByte || n.span.EndByte > len(t.src) {
		return "", false
	}
	return string(t.src[n.span.StartByte:n.span.EndByte]), true
}

// Insert records docstring text for the unit at index i. The text is rendered
// as a triple-quoted literal and becomes the unit's first body statement when
// the tree is serialized, displacing the current first statement downward.
func (t *Tree) Insert(i int, text string) error {
	if i <= 0 || i >= len(t.nodes) {
		return fmt.Errorf("no unit at index %d", i)
	}
	n := &t.nodes[i]
	if n.bodyStart < 0 {
		return fmt.Errorf("no insertion point for %s %q", n.kind, n.name)
	}
	n.insert = quoteDocstring(text)
	t.changed = true
	return nil
}

// Serialize re-emits the source text with all recorded insertions applied.
// Untouched regions are reproduced byte for byte.
func (t *Tree) Serialize() []byte {
	type splice struct {
		off  int
		text string
	}

	var splices []splice
	for _, n := range t.nodes {
		if n.insert == "" {
			continue
		}
		splices = append(splices, splice{off: n.bodyStart, text: insertionText(n)})
	}
	sort.SliceStable(splices, func(i, j int) bool { return splices[i].off < splices[j].off })

	var buf bytes.Buffer
	buf.Grow(len(t.src) + 64*len(splices))
	prev := 0
	for _, sp := range splices {
		buf.Write(t.src[prev:sp.off])
		buf.WriteString(sp.text)
		prev = sp.off
	}
	buf.Write(t.src[prev:])
	return buf.Bytes()
}

// insertionText places the literal on its own line. Inline bodies are pushed
// onto a fresh indented line below the header.
func insertionText(n node) string {
	if n.inline {
		return "\n" + n.indent + n.insert + "\n" + n.indent
	}
	return n.insert + "\n" + n.indent
}

// buildModule seeds the arena with the module sentinel and walks the root
// block. The module always lands at index 0, ahead of everything it contains.
func (t *Tree) buildModule(root *sitter.Node) {
	base := filepath.Base(t.filename)
	t.nodes = append(t.nodes, node{
		kind:      domain.KindModule,
		name:      strings.TrimSuffix(base, filepath.Ext(base)),
		bodyStart: -1,
		doc:       t.blockDocstring(root),
	})
	children := t.buildBlock(root)
	t.nodes[0].children = children
}

// buildBlock walks the statements of a block (or the module root) and builds
// arena nodes for every class and function definition, decorated or not.
func (t *Tree) buildBlock(block *sitter.Node) []int {
	var children []int
	for i := 0; i < int(block.ChildCount()); i++ {
		stmt := block.Child(i)
		switch stmt.Type() {
		case "function_definition", "class_definition":
			children = append(children, t.buildDef(stmt))
		case "decorated_definition":
			for j := 0; j < int(stmt.ChildCount()); j++ {
				inner := stmt.Child(j)
				if inner.Type() == "function_definition" || inner.Type() == "class_definition" {
					children = append(children, t.buildDef(inner))
					break
				}
			}
		}
	}
	return children
}

// buildDef builds the arena node for one definition, reserving its index
// before descending so containers always precede their members.
func (t *Tree) buildDef(def *sitter.Node) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{bodyStart: -1})

	kind := domain.KindFunction
	if def.Type() == "class_definition" {
		kind = domain.KindClass
	}

	var name, paramsText, basesText, returnType string
	var params []string
	var block *sitter.Node

	for i := 0; i < int(def.ChildCount()); i++ {
		c := def.Child(i)
		switch c.Type() {
		case "async":
			kind = domain.KindAsyncFunction
		case "identifier":
			if name == "" {
				name = t.text(c)
			}
		case "parameters":
			paramsText = t.text(c)
			params = t.paramNames(c)
		case "argument_list":
			basesText = t.text(c)
		case "type":
			returnType = t.text(c)
		case "block":
			block = c
		}
	}

	n := node{
		kind: kind,
		name: name,
		span: domain.Span{StartByte: int(def.StartByte()), EndByte: int(def.EndByte())},
	}

	switch kind {
	case domain.KindClass:
		n.signature = "class " + name + basesText
	case domain.KindAsyncFunction:
		n.signature = "async def " + name + paramsText
	default:
		n.signature = "def " + name + paramsText
	}
	if returnType != "" && kind != domain.KindClass {
		n.signature += " -> " + returnType
	}
	if kind != domain.KindClass {
		n.params = params
	}

	if block != nil {
		n.doc = t.blockDocstring(block)
		n.bodyStart, n.indent, n.inline = t.insertionPoint(def, block)
		n.children = t.buildBlock(block)
	}

	t.nodes[idx] = n
	return idx
}

// blockDocstring returns the docstring of a block, or nil when absent. The
// docstring is the first non-comment statement iff it is a bare string
// expression. An empty string literal yields a non-nil empty result: the
// unit counts as documented.
func (t *Tree) blockDocstring(block *sitter.Node) *string {
	first := firstStatement(block)
	if first == nil || first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return nil
	}
	str := first.Child(0)
	if str.Type() != "string" {
		return nil
	}
	v := stringContent(t.src[str.StartByte():str.EndByte()])
	return &v
}

// insertionPoint locates where a docstring would be spliced in: the byte
// offset of the first body statement, the indentation to reproduce, and
// whether the body sits on the header line.
func (t *Tree) insertionPoint(def, block *sitter.Node) (int, string, bool) {
	first := firstStatement(block)
	if first == nil {
		return -1, "", false
	}
	bodyStart := int(first.StartByte())

	lineStart := bytes.LastIndexByte(t.src[:bodyStart], '\n') + 1
	prefix := t.src[lineStart:bodyStart]
	if isBlank(prefix) {
		return bodyStart, string(prefix), false
	}

	// Inline body: indent one level past the def header's line.
	defStart := int(def.StartByte())
	defLine := bytes.LastIndexByte(t.src[:defStart], '\n') + 1
	return bodyStart, string(leadingBlank(t.src[defLine:])) + "    ", true
}

// firstStatement returns the first non-comment child of a block.
func firstStatement(block *sitter.Node) *sitter.Node {
	for i := 0; i < int(block.ChildCount()); i++ {
		c := block.Child(i)
		if c.Type() == "comment" {
			continue
		}
		return c
	}
	return nil
}

// paramNames collects plain parameter names, self included. Splat and
// separator forms are skipped, matching the positional-argument view the
// extractor reports.
func (t *Tree) paramNames(parameters *sitter.Node) []string {
	var names []string
	for i := 0; i < int(parameters.ChildCount()); i++ {
		c := parameters.Child(i)
		switch c.Type() {
		case "identifier":
			names = append(names, t.text(c))
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			if id := firstIdentifier(c); id != nil {
				names = append(names, t.text(id))
			}
		}
	}
	return names
}

func firstIdentifier(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == "identifier" {
			return c
		}
	}
	return nil
}

func (t *Tree) text(n *sitter.Node) string {
	return string(t.src[n.StartByte():n.EndByte()])
}

// stringContent strips string prefixes and quotes from a string literal,
// leaving the raw content. Escape sequences are not interpreted.
func stringContent(raw []byte) string {
	s := string(raw)
	s = strings.TrimLeft(s, "rRbBuUfF")

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) {
			if len(s) >= 2*len(q) && strings.HasSuffix(s, q) {
				return s[len(q) : len(s)-len(q)]
			}
			return strings.Trim(s, `"'`)
		}
	}
	return s
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

func leadingBlank(b []byte) []byte {
	for i, c := range b {
		if c != ' ' && c != '\t' {
			return b[:i]
		}
	}
	return b
}
