package basictracer

import "sort"

// SpanNode is one span in a trace tree.
type SpanNode struct {
	Span     RawSpan
	Children []*SpanNode
}

// BuildTrees links spans to their parents by ParentSpanID within each trace
// and returns the roots ordered by start time. A span whose parent is not in
// the list becomes a root of its own.
func BuildTrees(spans []RawSpan) []*SpanNode {
	type nodeKey struct{ traceID, spanID uint64 }

	nodes := make(map[nodeKey]*SpanNode, len(spans))
	for _, span := range spans {
		nodes[nodeKey{span.Context.TraceID, span.Context.SpanID}] = &SpanNode{Span: span}
	}

	var roots []*SpanNode
	for _, node := range nodes {
		parent, ok := nodes[nodeKey{node.Span.Context.TraceID, node.Span.ParentSpanID}]
		if node.Span.IsRoot() || !ok || parent == node {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	for _, node := range nodes {
		sortNodes(node.Children)
	}
	return roots
}

func sortNodes(nodes []*SpanNode) {
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i].Span, nodes[j].Span
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Context.SpanID < b.Context.SpanID
	})
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func (n *SpanNode) Walk(fn func(depth int, node *SpanNode) bool) {
	n.walk(0, fn)
}

func (n *SpanNode) walk(depth int, fn func(int, *SpanNode) bool) {
	if !fn(depth, n) {
		return
	}
	for _, child := range n.Children {
		child.walk(depth+1, fn)
	}
}
