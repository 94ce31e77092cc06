//go:build !llvm
// +build !llvm

package llvm

import (
	"testing"

	"github.com/pkg/errors"

	"jlc/src/ir"
	"jlc/src/util"
)

func TestGenLLVMUnavailable(t *testing.T) {
	if _, err := GenLLVM(util.Options{TargetArch: util.Aarch64}, &ir.Program{}); errors.Cause(err) != ErrNoLLVM {
		t.Errorf("expected ErrNoLLVM, got %v", err)
	}
}
