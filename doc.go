// Package skemagen turns a JSON Schema document into a typed
// declaration AST suitable for emitting Go (or any statically typed)
// source.
//
// The root package provides:
//
//   - Generate/GenerateBytes: normalize a linked schema graph and
//     build its declaration AST
//   - Options: per-run policy (source file identity, legacy bound
//     stripping)
//
// Design policy:
//   - Keep only the orchestration API in the root package; the node
//     model lives in schema/, the rewrite pipeline in normalize/, the
//     builder in ast/.
//   - Ingestion (loader/), reference linking (linker/) and Go
//     rendering (gen/) are collaborators around the core; the CLI
//     under cmd/skemagen wires them end to end.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	root, err := loader.JSON(data)
//	root, err = linker.Link(root, "schema.json")
//	tree, err := skemagen.Generate(root, skemagen.Options{FileName: "schema.json"})
//	src, err := gen.Render(tree, gen.Options{Package: "types"})
package skemagen
