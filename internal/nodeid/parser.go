// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// endpointRegex matches one side of an edge, e.g. `abc-123:0` or `abc-123`.
var endpointRegex = regexp.MustCompile(`^([A-Za-z0-9_.\-]+)(?::(\d+))?$`)

// ParseEdgeKey parses the canonical string produced by EdgeKey.String.
// A target without an input index is read as a node-to-param edge.
func ParseEdgeKey(raw string) (EdgeKey, error) {
	if raw == "" {
		return EdgeKey{}, fmt.Errorf("edge key cannot be empty")
	}

	src, dst, ok := strings.Cut(raw, "->")
	if !ok {
		return EdgeKey{}, fmt.Errorf("edge key %q is missing '->'", raw)
	}

	srcMatch := endpointRegex.FindStringSubmatch(src)
	if srcMatch == nil || srcMatch[2] == "" {
		return EdgeKey{}, fmt.Errorf("invalid edge source %q: expected id:output", src)
	}
	dstMatch := endpointRegex.FindStringSubmatch(dst)
	if dstMatch == nil {
		return EdgeKey{}, fmt.Errorf("invalid edge target %q", dst)
	}

	output, err := strconv.Atoi(srcMatch[2])
	if err != nil {
		// Unreachable due to regex `\d+`
		return EdgeKey{}, fmt.Errorf("internal error parsing output index: %w", err)
	}

	if dstMatch[2] == "" {
		return NewParamEdge(ObjectID(srcMatch[1]), output, ObjectID(dstMatch[1])), nil
	}
	input, err := strconv.Atoi(dstMatch[2])
	if err != nil {
		return EdgeKey{}, fmt.Errorf("internal error parsing input index: %w", err)
	}
	return NewNodeEdge(ObjectID(srcMatch[1]), output, ObjectID(dstMatch[1]), input), nil
}
