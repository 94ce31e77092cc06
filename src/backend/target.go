// Package backend selects the target register file of the compilation.
package backend

import (
	"github.com/pkg/errors"

	"jlc/src/backend/arm"
	"jlc/src/backend/regfile"
	"jlc/src/backend/riscv"
	"jlc/src/util"
)

// ---------------------
// ----- Functions -----
// ---------------------

// CreateRegisterFile returns a fresh register file for the architecture defined by opt.
func CreateRegisterFile(opt util.Options) (regfile.RegisterFile, error) {
	switch opt.TargetArch {
	case util.Aarch64:
		return arm.CreateRegisterFile(), nil
	case util.Riscv64:
		return riscv.CreateRegisterFile(), nil
	default:
		return nil, errors.Errorf("unsupported target architecture %d", opt.TargetArch)
	}
}
