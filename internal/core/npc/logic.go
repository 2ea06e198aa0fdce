package npc

// And succeeds when every child succeeds. Children must settle immediately.
type And struct{ compound }

func NewAnd(children ...Node) *And {
	return &And{compound: newCompound("and", children)}
}

func (a *And) Update(ctx *Context) Status {
	if len(a.children) == 0 {
		return Fail
	}
	for _, ch := range a.children {
		switch ch.Update(ctx) {
		case Running:
			violation("%s: child %s returned running", a.name, ch.Name())
		case Fail:
			return Fail
		}
	}
	return Success
}

// Or succeeds when any child succeeds. Children must settle immediately.
type Or struct{ compound }

func NewOr(children ...Node) *Or {
	return &Or{compound: newCompound("or", children)}
}

func (o *Or) Update(ctx *Context) Status {
	for _, ch := range o.children {
		switch ch.Update(ctx) {
		case Running:
			violation("%s: child %s returned running", o.name, ch.Name())
		case Success:
			return Success
		}
	}
	return Fail
}

// Negate inverts the result of its only child.
type Negate struct {
	named
	child Node
}

func NewNegate(child Node) *Negate {
	if child == nil {
		violation("negate requires a child")
	}
	return &Negate{named: named{name: "negate"}, child: child}
}

func (n *Negate) Children() []Node { return []Node{n.child} }

func (n *Negate) Update(ctx *Context) Status {
	switch n.child.Update(ctx) {
	case Running:
		violation("%s: child %s returned running", n.name, n.child.Name())
	case Fail:
		return Success
	}
	return Fail
}

func (n *Negate) React(ev Event, ctx *Context) Status { return checkedReact(n.child, ev, ctx) }
