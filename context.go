package jsontemplate

import "strings"

// Context is the stack of scopes a template is expanded against. The data
// passed to Expand is the outermost scope; sections push the values they
// enter. A Context is created per expansion and must not be retained by
// formatters after they return.
type Context struct {
	frames  []frame
	defines map[string][]Node
}

type frame struct {
	value any
	index int // 1-based position inside a repeated section, 0 elsewhere
}

func newContext(data any, defines map[string][]Node) *Context {
	return &Context{frames: []frame{{value: data}}, defines: defines}
}

func (c *Context) push(value any, index int) {
	c.frames = append(c.frames, frame{value: value, index: index})
}

func (c *Context) pop() {
	c.frames = c.frames[:len(c.frames)-1]
}

// Cursor returns the innermost scope value, the one "@" refers to.
func (c *Context) Cursor() any {
	return c.frames[len(c.frames)-1].value
}

// Index returns the 1-based position of the cursor inside the innermost
// repeated section.
func (c *Context) Index() (int, bool) {
	idx := c.frames[len(c.frames)-1].index
	return idx, idx > 0
}

// Lookup resolves a variable name. The first segment of a dotted name is
// searched from the innermost scope outward; the remaining segments are
// looked up only inside the value found.
func (c *Context) Lookup(name string) (any, bool) {
	switch name {
	case "@":
		return c.Cursor(), true
	case "@index":
		idx, ok := c.Index()
		if !ok {
			return nil, false
		}
		return idx, true
	}
	first, rest, dotted := strings.Cut(name, ".")
	var val any
	if first == "@" {
		val = c.Cursor()
	} else {
		var ok bool
		if val, ok = c.lookupScopes(first); !ok {
			return nil, false
		}
	}
	if !dotted {
		return val, true
	}
	for _, part := range strings.Split(rest, ".") {
		var ok bool
		if val, ok = getField(val, part); !ok {
			return nil, false
		}
	}
	return val, true
}

// Defined reports whether the template declares {.define name}.
func (c *Context) Defined(name string) bool {
	_, ok := c.defines[name]
	return ok
}

func (c *Context) lookupScopes(name string) (any, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		scope := c.frames[i].value
		if val, ok := getField(scope, name); ok {
			return val, true
		}
		if is, ok := scope.(IsolatedScope); ok && is.Isolated() {
			return nil, false
		}
	}
	return nil, false
}
