// Package llvm lowers the type checked syntax tree to LLVM IR. The generator needs cgo and an LLVM installation and
// is only compiled with the llvm build tag.
package llvm
