// stack.go provides a slice backed stack that holds arbitrary data.
// The bottom element is the first entry into the stack, while the top is
// the last entry to be added to the stack. The stack does not store <nil>
// values.

package util

// Stack is a LIFO stack. The zero value is an empty stack ready for use.
// A Stack is owned by a single compilation unit and is not safe for concurrent use.
type Stack struct {
	e []interface{}
}

// Push adds a new element to the top of the stack. <nil> values are ignored.
func (s *Stack) Push(e interface{}) {
	if e == nil {
		return
	}
	s.e = append(s.e, e)
}

// Pop removes and returns the last inserted element on the stack.
// If the stack is empty <nil> is returned.
func (s *Stack) Pop() interface{} {
	if len(s.e) == 0 {
		return nil
	}
	e := s.e[len(s.e)-1]
	s.e[len(s.e)-1] = nil
	s.e = s.e[:len(s.e)-1]
	return e
}

// Peek works just like Pop, but it does not remove the element from the stack.
func (s *Stack) Peek() interface{} {
	if len(s.e) == 0 {
		return nil
	}
	return s.e[len(s.e)-1]
}

// Size returns the number of elements in the stack.
func (s *Stack) Size() int {
	return len(s.e)
}

// Get returns the nth element from the stack, top down, not zero indexed.
// Get(1) returns the top element and is similar to Peek.
// Get(Stack.Size()) returns the bottom element. If the index n is out of range
// <nil> is returned. Get does not remove elements from the stack.
func (s *Stack) Get(n int) interface{} {
	if n < 1 || n > len(s.e) {
		return nil
	}
	return s.e[len(s.e)-n]
}
