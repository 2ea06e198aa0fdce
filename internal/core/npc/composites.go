package npc

const noRunning = -1

// compound owns an ordered list of children and remembers which of them
// returned Running on the last update.
type compound struct {
	named
	children []Node
	running  int
}

func newCompound(name string, children []Node) compound {
	return compound{named: named{name: name}, children: children, running: noRunning}
}

func (c *compound) Children() []Node { return c.children }

// Add appends a child. A node must have exactly one parent.
func (c *compound) Add(children ...Node) { c.children = append(c.children, children...) }

// RunningIndex is the child that returned Running on the last update, or -1.
func (c *compound) RunningIndex() int { return c.running }

// React offers the event to the running child first, then to every child in
// order. The first Success wins.
func (c *compound) React(ev Event, ctx *Context) Status {
	if len(c.children) == 0 {
		return Fail
	}
	if c.running >= 0 && c.running < len(c.children) {
		if checkedReact(c.children[c.running], ev, ctx) == Success {
			return Success
		}
	}
	for _, ch := range c.children {
		if checkedReact(ch, ev, ctx) == Success {
			return Success
		}
	}
	return Fail
}

// Sequence runs its children in order until one does not succeed.
type Sequence struct{ compound }

func NewSequence(children ...Node) *Sequence {
	return &Sequence{compound: newCompound("sequence", children)}
}

func (s *Sequence) Update(ctx *Context) Status {
	s.running = noRunning
	if len(s.children) == 0 {
		return Fail
	}
	for i, ch := range s.children {
		st := ch.Update(ctx)
		if st == Success {
			continue
		}
		if st == Running {
			s.running = i
		}
		return st
	}
	return Success
}

// Selector runs its children in order until one does not fail.
type Selector struct{ compound }

func NewSelector(children ...Node) *Selector {
	return &Selector{compound: newCompound("selector", children)}
}

func (s *Selector) Update(ctx *Context) Status {
	s.running = noRunning
	for i, ch := range s.children {
		st := ch.Update(ctx)
		if st == Fail {
			continue
		}
		if st == Running {
			s.running = i
		}
		return st
	}
	return Fail
}

// Parallel ticks every child and reports the first settled result.
type Parallel struct{ compound }

func NewParallel(children ...Node) *Parallel {
	return &Parallel{compound: newCompound("parallel", children)}
}

func (p *Parallel) Update(ctx *Context) Status {
	if len(p.children) == 0 {
		return Fail
	}
	result := Running
	for _, ch := range p.children {
		st := ch.Update(ctx)
		if result == Running && st != Running {
			result = st
		}
	}
	return result
}

// React delivers the event to all children and succeeds if any of them did.
func (p *Parallel) React(ev Event, ctx *Context) Status {
	result := Fail
	for _, ch := range p.children {
		if checkedReact(ch, ev, ctx) == Success {
			result = Success
		}
	}
	return result
}
