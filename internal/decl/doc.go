// Package decl holds the host declaration tree the ABI pass walks: classes,
// their methods and fields, and the annotations attached to them.
//
// The pass never tokenizes source. A host front end (or the JSON/msgpack
// loaders in this package) builds a Unit; the pass reads annotations from
// it and, at the very end, replaces class member lists with the spliced
// routing procedure.
package decl
