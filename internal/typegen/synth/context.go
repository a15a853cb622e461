package synth

// Context is the per-call state of one synthesis: the nesting path of the
// declaration being built and the reference names being resolved.
// A Context must not be shared between goroutines.
type Context struct {
	nesting   []string
	resolving []string
}

// NewContext starts a context nested under path.
func NewContext(path ...string) *Context {
	return &Context{nesting: append([]string(nil), path...)}
}

// Push enters a nested declaration.
func (c *Context) Push(name string) {
	c.nesting = append(c.nesting, name)
}

// Pop leaves the innermost nested declaration.
func (c *Context) Pop() {
	if len(c.nesting) > 0 {
		c.nesting = c.nesting[:len(c.nesting)-1]
	}
}

// Path returns a copy of the current nesting path.
func (c *Context) Path() []string {
	return append([]string(nil), c.nesting...)
}
