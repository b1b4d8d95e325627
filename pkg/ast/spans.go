package ast

// SetSpan records where node appears in the source. Nodes built by hand in
// tests carry no span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}
