package lower

// scope.go implements the layered scope stack and defer discipline of
// SPEC §3.4 and §4.4.5: a plain []*Scope with the innermost layer last,
// walked top-down for variable lookup and defer emission without popping
// intervening layers.

// PushScope pushes a new scope layer of the given kind.
func (c *Context) PushScope(kind ScopeKind) {
	c.scopes = append(c.scopes, &Scope{Kind: kind, Vars: make(map[string]uint32)})
}

// topScope returns the innermost scope, or nil if the stack is empty.
func (c *Context) topScope() *Scope {
	if len(c.scopes) == 0 {
		return nil
	}
	return c.scopes[len(c.scopes)-1]
}

// Bind binds name to graph id in the innermost scope.
func (c *Context) Bind(name string, id uint32) {
	if s := c.topScope(); s != nil {
		s.Vars[name] = id
	}
}

// Lookup searches scopes from innermost to outermost for name.
func (c *Context) Lookup(name string) (uint32, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if id, ok := c.scopes[i].Vars[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// RegisterDefer appends a deferred call to the innermost scope's LIFO list.
func (c *Context) RegisterDefer(runtimeName string, args []uint32) {
	if s := c.topScope(); s != nil {
		s.Defers = append(s.Defers, deferredCall{RuntimeName: runtimeName, Args: args})
	}
}

// emitDefers emits Call nodes for one scope's defer list in LIFO order.
func (c *Context) emitDefers(s *Scope) {
	for i := len(s.Defers) - 1; i >= 0; i-- {
		d := s.Defers[i]
		c.Builder.CreateCall(d.RuntimeName, d.Args...)
	}
}

// EmitDefersToFunctionRoot emits every scope's defers, innermost first,
// without popping any layer, for a `return` statement (SPEC §4.4.5).
func (c *Context) EmitDefersToFunctionRoot() {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		c.emitDefers(c.scopes[i])
	}
}

// EmitDefersToLoop emits defers of every layer above (excluding) the
// nearest enclosing Loop scope, for `break`/`continue` (SPEC §4.4.5).
func (c *Context) EmitDefersToLoop() {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		s := c.scopes[i]
		if s.Kind == ScopeLoop {
			return
		}
		c.emitDefers(s)
	}
}

// PopScope emits the innermost scope's defers along the normal fall-through
// exit path, then removes it from the stack.
func (c *Context) PopScope() {
	if len(c.scopes) == 0 {
		return
	}
	c.emitDefers(c.scopes[len(c.scopes)-1])
	c.scopes = c.scopes[:len(c.scopes)-1]
}
