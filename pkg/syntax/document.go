package syntax

// Document is the serializable form of a tree, used for JSON and YAML output.
// Its JSON shape is described by schema/tree-schema.json.
type Document struct {
	Root     *DocumentNode `json:"root"      yaml:"root"`
	Dialect  string        `json:"dialect"   yaml:"dialect"`
	Grammar  string        `json:"grammar"   yaml:"grammar"`
	HasError bool          `json:"has_error" yaml:"has_error"`
}

// DocumentNode is one serialized node.
type DocumentNode struct {
	Kind      string          `json:"kind"              yaml:"kind"`
	Field     string          `json:"field,omitempty"   yaml:"field,omitempty"`
	Text      string          `json:"text,omitempty"    yaml:"text,omitempty"`
	Children  []*DocumentNode `json:"children,omitempty" yaml:"children,omitempty"`
	Start     Point           `json:"start"             yaml:"start"`
	End       Point           `json:"end"               yaml:"end"`
	StartByte uint32          `json:"start_byte"        yaml:"start_byte"`
	EndByte   uint32          `json:"end_byte"          yaml:"end_byte"`
	Named     bool            `json:"named"             yaml:"named"`
	Missing   bool            `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// DocumentOptions controls NewDocument.
type DocumentOptions struct {
	// Anonymous keeps punctuation and keyword tokens.
	Anonymous bool
	// MaxTextLen caps the text recorded on leaves; zero records none.
	MaxTextLen int
}

// NewDocument converts the subtree at n into a Document.
func NewDocument(n Node, opts DocumentOptions) *Document {
	if n.IsNull() {
		return &Document{}
	}

	tree := n.Tree()

	return &Document{
		Root:     newDocumentNode(n, tree.source, opts),
		Dialect:  tree.Dialect().String(),
		Grammar:  tree.Grammar().Name(),
		HasError: tree.HasError(),
	}
}

func newDocumentNode(n Node, source []byte, opts DocumentOptions) *DocumentNode {
	docNode := &DocumentNode{
		Kind:      n.Kind(),
		Field:     n.Field(),
		Start:     n.StartPoint(),
		End:       n.EndPoint(),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		Named:     n.IsNamed(),
		Missing:   n.IsMissing(),
	}

	for child := n.FirstChild(); !child.IsNull(); child = child.NextSibling() {
		if !opts.Anonymous && !child.IsNamed() && !child.IsMissing() {
			continue
		}

		docNode.Children = append(docNode.Children, newDocumentNode(child, source, opts))
	}

	if n.FirstChild().IsNull() && opts.MaxTextLen > 0 {
		text := n.Text(source)
		if len(text) > opts.MaxTextLen {
			text = text[:opts.MaxTextLen]
		}

		docNode.Text = text
	}

	return docNode
}

// Summary describes a single node without its subtree.
type Summary struct {
	Kind      string `json:"kind"            yaml:"kind"`
	Field     string `json:"field,omitempty" yaml:"field,omitempty"`
	Text      string `json:"text"            yaml:"text"`
	Start     Point  `json:"start"           yaml:"start"`
	End       Point  `json:"end"             yaml:"end"`
	StartByte uint32 `json:"start_byte"      yaml:"start_byte"`
	EndByte   uint32 `json:"end_byte"        yaml:"end_byte"`
}

// Summarize returns the summary of n with its full source text.
func Summarize(n Node, source []byte) Summary {
	return Summary{
		Kind:      n.Kind(),
		Field:     n.Field(),
		Text:      n.Text(source),
		Start:     n.StartPoint(),
		End:       n.EndPoint(),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
	}
}
