package sim

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is an element of the simulated machine, such as the main memory,
// the cache, or the processor core. Components are identified by their names
// and expose hooks so that tracers can observe them.
type Component interface {
	Named
	Hookable
}

// ComponentBase provides the name and hook bookkeeping shared by all the
// components.
type ComponentBase struct {
	HookableBase
	name string
}

// NewComponentBase creates a new ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	c := new(ComponentBase)
	c.name = name

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
