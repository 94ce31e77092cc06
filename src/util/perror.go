package util

import "sync"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Perror collects errors reported from parallel worker threads. Errors are retrieved once the parallel job has
// completed.
type Perror struct {
	errors []error // Buffer of error messages.
	mx     sync.Mutex
}

// ----------------------
// ----- Constants ------
// ----------------------

// defaultBufferSize defines the fallback buffer size of the error array.
const defaultBufferSize = 16

// ---------------------
// ----- functions -----
// ---------------------

// NewPerror returns a pointer to a Perror with n number of pre-allocated slots for errors in the buffer.
func NewPerror(n int) *Perror {
	if n < 1 {
		n = defaultBufferSize
	}
	return &Perror{errors: make([]error, 0, n)}
}

// Append records the error err. <nil> errors are ignored.
func (pe *Perror) Append(err error) {
	if err == nil {
		return
	}
	pe.mx.Lock()
	defer pe.mx.Unlock()
	pe.errors = append(pe.errors, err)
}

// Len returns the number of buffered errors.
func (pe *Perror) Len() int {
	pe.mx.Lock()
	defer pe.mx.Unlock()
	return len(pe.errors)
}

// First returns the first reported error, or <nil> if no errors were reported.
func (pe *Perror) First() error {
	pe.mx.Lock()
	defer pe.mx.Unlock()
	if len(pe.errors) == 0 {
		return nil
	}
	return pe.errors[0]
}
