package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks any file may contain. Pointer
// attributes tell "absent" apart from a zero value.
type fileRoot struct {
	Log      *logBlock      `hcl:"log,block"`
	Registry *registryBlock `hcl:"registry,block"`
	HTTP     *httpBlock     `hcl:"http,block"`
	Sources  []*sourceBlock `hcl:"source,block"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type registryBlock struct {
	MaxClosed    *int    `hcl:"max_closed,optional"`
	MaxClosedAge *string `hcl:"max_closed_age,optional"`
}

type httpBlock struct {
	Port *int `hcl:"port,optional"`
}

// sourceBlock keeps its body raw; the factory for Type decodes it.
type sourceBlock struct {
	Type string   `hcl:"type,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}
