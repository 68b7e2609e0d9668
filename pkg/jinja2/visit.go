package jinja2

import (
	"fmt"
	"strings"
)

// Walk calls fn for every node in the tree, parents before children. If fn
// returns false the node's children are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch t := n.(type) {
	case *Document:
		walkAll(t.Nodes, fn)
	case *OutputNode:
		Walk(t.Expr, fn)
	case *SetNode:
		if t.Expr != nil {
			Walk(t.Expr, fn)
		}
		walkAll(t.Body, fn)
	case *IfNode:
		Walk(t.Cond, fn)
		walkAll(t.Then, fn)
		for _, br := range t.Elifs {
			Walk(br.Cond, fn)
			walkAll(br.Body, fn)
		}
		walkAll(t.Else, fn)
	case *ForNode:
		Walk(t.Iter, fn)
		walkAll(t.Body, fn)
		walkAll(t.Else, fn)
	case *BlockNode:
		walkAll(t.Body, fn)
	case *MacroNode:
		for _, p := range t.Params {
			if p.Default != nil {
				Walk(p.Default, fn)
			}
		}
		walkAll(t.Body, fn)
	case *ListExpr:
		walkAll(exprNodes(t.Items), fn)
	case *TupleExpr:
		walkAll(exprNodes(t.Items), fn)
	case *DictExpr:
		for i := range t.Keys {
			Walk(t.Keys[i], fn)
			Walk(t.Values[i], fn)
		}
	case *AttrExpr:
		Walk(t.X, fn)
	case *IndexExpr:
		Walk(t.X, fn)
		Walk(t.Index, fn)
	case *CallExpr:
		Walk(t.Fn, fn)
		walkAll(exprNodes(t.Args), fn)
		for _, kw := range t.Kwargs {
			Walk(kw.Value, fn)
		}
	case *FilterExpr:
		Walk(t.X, fn)
		walkAll(exprNodes(t.Args), fn)
	case *UnaryExpr:
		Walk(t.X, fn)
	case *BinaryExpr:
		Walk(t.L, fn)
		Walk(t.R, fn)
	case *CondExpr:
		Walk(t.Cond, fn)
		Walk(t.Then, fn)
		Walk(t.Else, fn)
	}
}

func walkAll(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		Walk(n, fn)
	}
}

func exprNodes(exprs []Expr) []Node {
	out := make([]Node, len(exprs))
	for i, e := range exprs {
		out[i] = e
	}
	return out
}

// Pretty returns an indented one-node-per-line dump of the tree, useful for
// debugging parser output.
func Pretty(n Node) string {
	var sb strings.Builder
	pretty(&sb, n, 0)
	return sb.String()
}

func pretty(sb *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch t := n.(type) {
	case *Document:
		fmt.Fprintf(sb, "%sdocument\n", indent)
		prettyAll(sb, t.Nodes, depth+1)
	case *TextNode:
		fmt.Fprintf(sb, "%stext %q\n", indent, t.Text)
	case *RawNode:
		fmt.Fprintf(sb, "%sraw %q\n", indent, t.Text)
	case *OutputNode:
		fmt.Fprintf(sb, "%soutput\n", indent)
		pretty(sb, t.Expr, depth+1)
	case *SetNode:
		fmt.Fprintf(sb, "%sset %s\n", indent, t.Name)
		if t.Expr != nil {
			pretty(sb, t.Expr, depth+1)
		}
		prettyAll(sb, t.Body, depth+1)
	case *IfNode:
		fmt.Fprintf(sb, "%sif\n", indent)
		pretty(sb, t.Cond, depth+1)
		prettyAll(sb, t.Then, depth+1)
		for _, br := range t.Elifs {
			fmt.Fprintf(sb, "%selif\n", indent)
			pretty(sb, br.Cond, depth+1)
			prettyAll(sb, br.Body, depth+1)
		}
		if len(t.Else) > 0 {
			fmt.Fprintf(sb, "%selse\n", indent)
			prettyAll(sb, t.Else, depth+1)
		}
	case *ForNode:
		fmt.Fprintf(sb, "%sfor %s\n", indent, strings.Join(t.Targets, ", "))
		pretty(sb, t.Iter, depth+1)
		prettyAll(sb, t.Body, depth+1)
		if len(t.Else) > 0 {
			fmt.Fprintf(sb, "%selse\n", indent)
			prettyAll(sb, t.Else, depth+1)
		}
	case *BlockNode:
		fmt.Fprintf(sb, "%sblock %s\n", indent, t.Name)
		prettyAll(sb, t.Body, depth+1)
	case *ExtendsNode:
		fmt.Fprintf(sb, "%sextends %q\n", indent, t.Template)
	case *IncludeNode:
		fmt.Fprintf(sb, "%sinclude %q\n", indent, t.Template)
	case *MacroNode:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.Name
			if p.Default != nil {
				params[i] += "=..."
			}
		}
		fmt.Fprintf(sb, "%smacro %s(%s)\n", indent, t.Name, strings.Join(params, ", "))
		prettyAll(sb, t.Body, depth+1)
	case *LiteralExpr:
		fmt.Fprintf(sb, "%sliteral %s\n", indent, quoteIfString(t.Val))
	case *NameExpr:
		fmt.Fprintf(sb, "%sname %s\n", indent, t.Name)
	case *ListExpr:
		fmt.Fprintf(sb, "%slist\n", indent)
		prettyAll(sb, exprNodes(t.Items), depth+1)
	case *TupleExpr:
		fmt.Fprintf(sb, "%stuple\n", indent)
		prettyAll(sb, exprNodes(t.Items), depth+1)
	case *DictExpr:
		fmt.Fprintf(sb, "%sdict\n", indent)
		for i := range t.Keys {
			pretty(sb, t.Keys[i], depth+1)
			pretty(sb, t.Values[i], depth+2)
		}
	case *AttrExpr:
		fmt.Fprintf(sb, "%sattr .%s\n", indent, t.Name)
		pretty(sb, t.X, depth+1)
	case *IndexExpr:
		fmt.Fprintf(sb, "%sindex\n", indent)
		pretty(sb, t.X, depth+1)
		pretty(sb, t.Index, depth+1)
	case *CallExpr:
		fmt.Fprintf(sb, "%scall\n", indent)
		pretty(sb, t.Fn, depth+1)
		prettyAll(sb, exprNodes(t.Args), depth+1)
		for _, kw := range t.Kwargs {
			fmt.Fprintf(sb, "%s  kwarg %s\n", indent, kw.Name)
			pretty(sb, kw.Value, depth+2)
		}
	case *FilterExpr:
		fmt.Fprintf(sb, "%sfilter |%s\n", indent, t.Name)
		pretty(sb, t.X, depth+1)
		prettyAll(sb, exprNodes(t.Args), depth+1)
	case *UnaryExpr:
		fmt.Fprintf(sb, "%sunary %s\n", indent, t.Op)
		pretty(sb, t.X, depth+1)
	case *BinaryExpr:
		fmt.Fprintf(sb, "%sbinary %s\n", indent, t.Op)
		pretty(sb, t.L, depth+1)
		pretty(sb, t.R, depth+1)
	case *CondExpr:
		fmt.Fprintf(sb, "%scond\n", indent)
		pretty(sb, t.Cond, depth+1)
		pretty(sb, t.Then, depth+1)
		pretty(sb, t.Else, depth+1)
	default:
		fmt.Fprintf(sb, "%s%T\n", indent, n)
	}
}

func prettyAll(sb *strings.Builder, nodes []Node, depth int) {
	for _, n := range nodes {
		pretty(sb, n, depth)
	}
}
