package ir

// returns reports whether a statement list is guaranteed to return. Statements after a returning statement are
// unreachable, so the list returns if any of its statements does.
func returns(stmts []Stmt) bool {
	for _, e1 := range stmts {
		if stmtReturns(e1) {
			return true
		}
	}
	return false
}

// stmtReturns reports whether statement s is guaranteed to return. An if without else never counts, an if-else
// counts when both branches do and a block counts when its contents do.
func stmtReturns(s Stmt) bool {
	switch n := s.(type) {
	case *Return, *VoidReturn:
		return true
	case *Block:
		return returns(n.Stmts)
	case *IfElse:
		return stmtReturns(n.Then) && stmtReturns(n.Else)
	default:
		return false
	}
}
