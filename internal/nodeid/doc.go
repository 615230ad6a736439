// internal/nodeid/doc.go

/*
Package nodeid provides typed identifiers for the objects of an inspected
Web Audio graph and the structured key that identifies a connection.

Context, node, param and listener ids are opaque strings assigned by the
instrumentation layer. Connections have no id of their own; they are named by
an EdgeKey whose canonical string form is

	source:output->target:input   (node to node)
	source:output->target         (node to param)

This package centralizes formatting and parsing of that form so logs, HTTP
responses and tests agree on one representation.
*/
package nodeid
