// Package dom defines a small capability interface over parsed HTML so that
// content scoring does not depend on any particular parser binding.
package dom

// Node is one element of a parsed document tree. Implementations must be
// read-only views; scoring never mutates the tree.
type Node interface {
	// TagName returns the lower-case element name ("div", "article",
	// "paragraph" for custom component tags, ...).
	TagName() string

	// Text returns the element's whitespace-normalized text content,
	// including descendants.
	Text() string

	// Attr returns the value of the named attribute and whether it exists.
	Attr(name string) (string, bool)

	// Attributes returns all attributes as a map.
	Attributes() map[string]string

	// Children returns the element's direct child elements.
	Children() []Node

	// DescendantsMatching walks all descendant elements (depth-first,
	// document order) and returns those for which pred is true.
	DescendantsMatching(pred func(Node) bool) []Node
}
