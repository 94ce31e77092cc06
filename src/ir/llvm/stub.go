//go:build !llvm
// +build !llvm

package llvm

import (
	"github.com/pkg/errors"

	"jlc/src/ir"
	"jlc/src/util"
)

// ErrNoLLVM is returned by GenLLVM when the compiler is built without the llvm build tag.
var ErrNoLLVM = errors.New("jlc built without LLVM support, rebuild with -tags llvm")

// GenLLVM reports that LLVM IR generation is unavailable in this build.
func GenLLVM(opt util.Options, prog *ir.Program) (string, error) {
	return "", ErrNoLLVM
}
