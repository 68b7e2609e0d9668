package jinja2

// scope is one frame in the variable lookup chain. Lookups walk outward to
// the parent; sets always bind in the current frame, so loop bodies and macro
// bodies cannot leak bindings into enclosing frames.
type scope struct {
	vars   Context
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: Context{}, parent: parent}
}

func rootScope(ctx Context) *scope {
	s := newScope(nil)
	for k, v := range ctx {
		s.vars[k] = v
	}
	return s
}

func (s *scope) lookup(name string) (Value, bool) {
	for f := s; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *scope) set(name string, v Value) {
	s.vars[name] = v
}
