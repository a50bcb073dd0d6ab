// Package contracts provides:
//
// - Declarative object contracts: an ordered set of named Fields that load (validate and
// convert) external data and dump (serialize) internal objects
// - An aggregated error model (ValidationError, ContractError) that reports every failing
// field in one pass, with Issues (JSON Pointer, code, message) for flat reporting
// - Partial loads, many (list) mode, only/exclude restrictions and lifecycle hooks
// - JSON Schema projection of the load side and typed decoding via LoadInto
//
// Design policy:
// - Keep the field protocol and contract orchestration in the root package; put concrete
// field kinds under fields/, validators under validate/, cross-field checks under rules/.
// - Document decoding lives in source/, declarative definitions in schema/, the CLI under
// cmd/contracts.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	def := contracts.Define("User").
//		Field("id", fields.Integer(fields.MinValue(1))).
//		Field("name", fields.String(fields.MaxLength(40))).
//		MustBuild()
//	c := contracts.MustNew(def)
//	v, err := c.Load(map[string]any{"id": "7", "name": "alice"})
//	if err != nil {
//		msgs := contracts.MessagesOf(err) // {"name": ["..."], ...}
//	}
//	out, err := c.Dump(v)
package contracts
