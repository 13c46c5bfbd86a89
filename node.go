package jsontemplate

// Node is one element of a compiled template. The set of node kinds is
// closed: the expansion engine switches over the concrete types below.
type Node interface {
	Position() Pos
	node()
}

// LiteralNode is text emitted verbatim.
type LiteralNode struct {
	Pos  Pos
	Text string
}

// SubstitutionNode replaces a variable reference with its formatted value.
type SubstitutionNode struct {
	Pos        Pos
	Name       string
	Formatters []FormatterCall
}

// SectionNode expands Body once with the named value pushed as the cursor
// when the value is truthy, and Or otherwise.
type SectionNode struct {
	Pos           Pos
	Name          string
	PreFormatters []FormatterCall
	Body          []Node
	Or            []Node
}

// RepeatedNode expands Body once per element of the named sequence,
// separated by AlternatesWith. Or is expanded for an empty or missing
// sequence.
type RepeatedNode struct {
	Pos            Pos
	Name           string
	PreFormatters  []FormatterCall
	Body           []Node
	AlternatesWith []Node
	Or             []Node
}

// PredicateNode expands the body of the first clause that holds, or Or when
// none does. The cursor is not changed.
type PredicateNode struct {
	Pos     Pos
	Clauses []PredicateClause
	Or      []Node
}

// PredicateClause is one {.if ...} or {.or ...} arm of a PredicateNode.
// When Test is nil the clause tests the truthiness of Name in the context.
type PredicateClause struct {
	Pos     Pos
	Name    string
	Negated bool
	Args    []string
	Test    PredicateFunc
	Body    []Node
}

// TemplateRefNode expands the block defined with {.define Name}.
type TemplateRefNode struct {
	Pos  Pos
	Name string
}

// FormatterCall is a formatter name resolved at compile time.
type FormatterCall struct {
	Name string
	Args []string
	Func FormatterFunc
}

func (n *LiteralNode) Position() Pos      { return n.Pos }
func (n *SubstitutionNode) Position() Pos { return n.Pos }
func (n *SectionNode) Position() Pos      { return n.Pos }
func (n *RepeatedNode) Position() Pos     { return n.Pos }
func (n *PredicateNode) Position() Pos    { return n.Pos }
func (n *TemplateRefNode) Position() Pos  { return n.Pos }

func (*LiteralNode) node()      {}
func (*SubstitutionNode) node() {}
func (*SectionNode) node()      {}
func (*RepeatedNode) node()     {}
func (*PredicateNode) node()    {}
func (*TemplateRefNode) node()  {}
