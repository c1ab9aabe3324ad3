package ir

// Module is an ordered sequence of functions (definitions and external
// declarations alike); it owns everything reachable from it.
type Module struct {
	Name  string
	Funcs []*Function
}

func NewModule(name string) *Module { return &Module{Name: name} }

func (m *Module) AddFunc(f *Function) { m.Funcs = append(m.Funcs, f) }

// FindFunc looks up a function (definition or declaration) by name,
// the way call sites resolve `print`/`read` by name.
func (m *Module) FindFunc(name string) *Function {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (m *Module) String() string {
	out := "module \"" + m.Name + "\"\n\n"
	for _, f := range m.Funcs {
		out += f.String() + "\n"
	}
	return out
}
