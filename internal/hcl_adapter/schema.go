package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Modules     []*moduleBlock  `hcl:"module,block"`
	Connections []*connectBlock `hcl:"connect,block"`
	Remain      hcl.Body        `hcl:",remain"`
}

// moduleBlock is a `module "<name>" { ... }` block.
type moduleBlock struct {
	Name   string       `hcl:"name,label"`
	Class  string       `hcl:"class"`
	Params *paramsBlock `hcl:"params,block"`
}

// paramsBlock holds arbitrary parameter attributes.
type paramsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// connectBlock is a `connect { from = ..., to = ... }` block.
type connectBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}
