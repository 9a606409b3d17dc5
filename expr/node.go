// Package expr builds expression trees over members of Go values and resolves them to
// runtime values.
package expr

import (
	"reflect"
	"strconv"
)

// NodeKind tags the variant held by a Node.
type NodeKind int

const (
	NodeConstant NodeKind = iota
	NodeMember
	NodeCall
	NodeConversion
	NodeLambda
	NodeIndex
)

func (k NodeKind) String() string {
	switch k {
	case NodeConstant:
		return "constant"
	case NodeMember:
		return "member"
	case NodeCall:
		return "call"
	case NodeConversion:
		return "conversion"
	case NodeLambda:
		return "lambda"
	case NodeIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Expect restricts the member kind a member access may reach.
type Expect int

const (
	// ExpectAny looks the member kind up when the node is resolved.
	ExpectAny Expect = iota
	ExpectField
	ExpectProperty
)

// Node is one expression in a tree. Which fields are meaningful depends on Kind:
//
//	NodeConstant    Value
//	NodeMember      Name, Expect, Owner or Static
//	NodeCall        Name with Owner or Static, or Callee; Args
//	NodeConversion  Owner (the operand), Target
//	NodeLambda      a function or CEL body, see Lambda and CEL
//	NodeIndex       Owner, Index
//
// Nodes are immutable once built and may be shared between goroutines.
type Node struct {
	Kind  NodeKind
	Value any
	Name  string

	Expect Expect
	// Static is the declaring type of a static member. Owner is nil then.
	Static reflect.Type
	Owner  *Node

	Callee *Node
	Args   []*Node

	Target reflect.Type
	Index  int

	// Safe yields null instead of ErrMissingArgument when the owner is nil.
	Safe bool

	label string
	body  body
}

// Const is a literal value.
func Const(v any) *Node {
	return &Node{Kind: NodeConstant, Value: v}
}

// Field reads the field name of owner.
func Field(owner *Node, name string) *Node {
	return &Node{Kind: NodeMember, Name: name, Expect: ExpectField, Owner: owner}
}

// Property reads the getter name of owner.
func Property(owner *Node, name string) *Node {
	return &Node{Kind: NodeMember, Name: name, Expect: ExpectProperty, Owner: owner}
}

// Member reads a field or property of owner, whichever name denotes.
func Member(owner *Node, name string) *Node {
	return &Node{Kind: NodeMember, Name: name, Owner: owner}
}

// Static reads a static member registered for t.
func Static(t reflect.Type, name string) *Node {
	return &Node{Kind: NodeMember, Name: name, Static: t}
}

// Call invokes method name on receiver. Arguments are accepted so that they can be
// reported; only calls without arguments resolve.
func Call(receiver *Node, name string, args ...*Node) *Node {
	return &Node{Kind: NodeCall, Name: name, Owner: receiver, Args: args}
}

// StaticCall invokes a static function registered for t.
func StaticCall(t reflect.Type, name string, args ...*Node) *Node {
	return &Node{Kind: NodeCall, Name: name, Static: t, Args: args}
}

// Invoke calls the function produced by callee, typically a Lambda.
func Invoke(callee *Node, args ...*Node) *Node {
	return &Node{Kind: NodeCall, Callee: callee, Args: args}
}

// Convert wraps inner in a conversion that keeps its value.
func Convert(inner *Node) *Node {
	return &Node{Kind: NodeConversion, Owner: inner}
}

// ConvertTo converts the value of inner to t.
func ConvertTo(inner *Node, t reflect.Type) *Node {
	return &Node{Kind: NodeConversion, Owner: inner, Target: t}
}

// Index selects element i of a slice, array or string.
func Index(owner *Node, i int) *Node {
	return &Node{Kind: NodeIndex, Owner: owner, Index: i}
}

// Lambda wraps a function taking no parameters. It may return a value, or a value and an error.
func Lambda(fn any) *Node {
	return &Node{Kind: NodeLambda, body: funcBody{fn: reflect.ValueOf(fn)}}
}

// Named gives n the label used in name=value output.
func Named(name string, n *Node) *Node {
	if n == nil {
		return nil
	}

	c := *n
	c.label = name

	return &c
}

// Accessor is a typed Lambda with a label.
func Accessor[T any](name string, fn func() T) *Node {
	return Named(name, Lambda(fn))
}

// Optional returns a copy of n tolerating a nil owner.
func Optional(n *Node) *Node {
	if n == nil {
		return nil
	}

	c := *n
	c.Safe = true

	return &c
}

// Label names the expression for name=value output.
func Label(n *Node) string {
	if n == nil {
		return "<missing>"
	}

	if n.label != "" {
		return n.label
	}

	switch n.Kind {
	case NodeConstant:
		return "const"
	case NodeMember:
		return n.Name
	case NodeCall:
		if n.Callee != nil {
			return Label(n.Callee)
		}

		return n.Name
	case NodeConversion:
		return Label(n.Owner)
	case NodeLambda:
		return "lambda"
	case NodeIndex:
		label := "[" + strconv.Itoa(n.Index) + "]"
		if n.Owner == nil {
			return label
		}

		return Label(n.Owner) + label
	default:
		return n.Kind.String()
	}
}
