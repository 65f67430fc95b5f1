package syntax

// FieldText returns the source text of the direct child of n bound to field.
// Fields are optional in the grammar, so a missing binding yields "" rather
// than an error. Only direct children are inspected.
func FieldText(n Node, field string, source []byte) string {
	return n.ChildByField(field).Text(source)
}
