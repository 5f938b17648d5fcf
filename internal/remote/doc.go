// Package remote exposes parameter mutation over a socket.io connection.
//
// The client listens for two events:
//
//	param:set    {"name": "src/count", "value": 16}
//	param:press  {"name": "seq/next"}
//
// and answers each with a param:result event carrying the parameter name,
// whether the mutation succeeded, the resulting value and an error message.
// String values are parsed like command line input; other JSON values are
// converted to typed values first.
package remote
