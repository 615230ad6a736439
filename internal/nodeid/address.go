// internal/nodeid/address.go
package nodeid

import (
	"strconv"
	"strings"
)

// String serializes the EdgeKey into its canonical representation.
func (k EdgeKey) String() string {
	var sb strings.Builder
	sb.WriteString(string(k.Source))
	sb.WriteRune(':')
	sb.WriteString(strconv.Itoa(k.Output))
	sb.WriteString("->")
	sb.WriteString(string(k.Target))
	if k.Kind == NodeToNode {
		sb.WriteRune(':')
		sb.WriteString(strconv.Itoa(k.Input))
	}
	return sb.String()
}

// Less orders keys by their canonical string, used to keep listings stable.
func (k EdgeKey) Less(other EdgeKey) bool {
	if k.Source != other.Source {
		return k.Source < other.Source
	}
	if k.Output != other.Output {
		return k.Output < other.Output
	}
	if k.Target != other.Target {
		return k.Target < other.Target
	}
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	return k.Input < other.Input
}
