// Package pack defines the core domain types and algorithms for character
// pack generation: asset definitions with declared dependencies, the
// topological resolver that turns a definition set into a generation order,
// and the output contract that splits raw model text into named assets.
//
// The package is deliberately free of I/O. Templates are loaded elsewhere,
// generation requests are issued elsewhere; pack only decides what to
// generate in which order and how to interpret what came back.
package pack
