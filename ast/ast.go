// Package ast models declarations of a statically-typed target
// language, built from a normalized JSON Schema graph. One build
// produces at most one Node per (schema node, category) pair, so
// shared and self-referential schemas share Node pointers.
package ast

// Kind identifies an AST node category.
type Kind int

const (
	KindAny Kind = iota
	KindArray
	KindBoolean
	KindCustom
	KindEnum
	KindInterface
	KindIntersection
	KindLiteral
	KindNever
	KindNull
	KindNumber
	KindObject
	KindString
	KindTuple
	KindUnion
)

var kindNames = map[Kind]string{
	KindAny:          "ANY",
	KindArray:        "ARRAY",
	KindBoolean:      "BOOLEAN",
	KindCustom:       "CUSTOM",
	KindEnum:         "ENUM",
	KindInterface:    "INTERFACE",
	KindIntersection: "INTERSECTION",
	KindLiteral:      "LITERAL",
	KindNever:        "NEVER",
	KindNull:         "NULL",
	KindNumber:       "NUMBER",
	KindObject:       "OBJECT",
	KindString:       "STRING",
	KindTuple:        "TUPLE",
	KindUnion:        "UNION",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Node is one AST node.
type Node struct {
	Kind Kind

	// Comment is documentation text attached to the declaration.
	Comment    string
	Deprecated bool

	// KeyName is the property key the node was first parsed under.
	KeyName string

	// StandaloneName is the unique declaration name. Anonymous nodes
	// (empty name) are inlined by the emitter.
	StandaloneName string

	// Params holds the children of UNION, INTERSECTION and TUPLE
	// nodes, and the single element type of an ARRAY node.
	Params []*Node

	// Members holds INTERFACE members in input declaration order.
	Members []Member

	// SuperTypes lists the resolved extends targets of an INTERFACE.
	SuperTypes []*Node

	// Enum holds KindEnum members.
	Enum []EnumMember

	// Literal carries the exact JSON value of a KindLiteral node.
	Literal any

	// Custom carries verbatim type text for KindCustom.
	Custom string

	// Tuple attributes. MaxItems is -1 when unbounded above;
	// SpreadParam, when set, types the open tail.
	SpreadParam *Node
	MinItems    int
	MaxItems    int
}

// Member is one member of an INTERFACE node.
type Member struct {
	KeyName  string
	Required bool
	Type     *Node

	// CatchAll marks the additional-properties member. It is always
	// present in the member list; whether it is optional is a concern
	// of the target language, not of this model.
	CatchAll bool

	// PatternProperty marks members reachable only when a key matches
	// their pattern.
	PatternProperty bool

	// UnreachableDefinition marks members emitted purely so their
	// types receive standalone declarations; they are never present as
	// actual fields.
	UnreachableDefinition bool

	Comment string
}

// EnumMember pairs a display identifier with its literal value node.
type EnumMember struct {
	Ident string
	Value *Node
}
