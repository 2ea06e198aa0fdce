package fsm

// Primitive transitions read the world through the tick context.

type enemyAvailable struct{ dist float64 }

// EnemyAvailable fires when any opponent is within dist (inclusive).
func EnemyAvailable(dist float64) Transition { return enemyAvailable{dist: dist} }

func (t enemyAvailable) Available(ctx Context) bool {
	_, ok := ctx.World.NearestOpponent(ctx.Self, t.dist)
	return ok
}

type playerNearby struct{ dist float64 }

func PlayerNearby(dist float64) Transition { return playerNearby{dist: dist} }

func (t playerNearby) Available(ctx Context) bool {
	s, ok := ctx.World.NearestPlayer(ctx.Self)
	return ok && s.Dist <= t.dist
}

type hitpointsLessThan struct{ threshold float64 }

func HitpointsLessThan(threshold float64) Transition { return hitpointsLessThan{threshold: threshold} }

func (t hitpointsLessThan) Available(ctx Context) bool {
	return ctx.World.Hitpoints(ctx.Self) < t.threshold
}

type playerHitpointsLessThan struct{ threshold float64 }

// PlayerHitpointsLessThan fires when any player is below threshold.
func PlayerHitpointsLessThan(threshold float64) Transition {
	return playerHitpointsLessThan{threshold: threshold}
}

func (t playerHitpointsLessThan) Available(ctx Context) bool {
	for _, id := range ctx.World.Agents() {
		if ctx.World.IsPlayer(id) && ctx.World.Hitpoints(id) < t.threshold {
			return true
		}
	}
	return false
}

type enemyReachable struct{}

// EnemyReachable never fires. It is a placeholder for reachability checks.
func EnemyReachable() Transition { return enemyReachable{} }

func (enemyReachable) Available(Context) bool { return false }

// Combinators own their operands. Both operands are always evaluated.

type negate struct{ inner Transition }

func Negate(inner Transition) Transition { return negate{inner: inner} }

func (t negate) Available(ctx Context) bool { return !t.inner.Available(ctx) }

type and struct{ lhs, rhs Transition }

func And(lhs, rhs Transition) Transition { return and{lhs: lhs, rhs: rhs} }

func (t and) Available(ctx Context) bool {
	l := t.lhs.Available(ctx)
	r := t.rhs.Available(ctx)
	return l && r
}

type or struct{ lhs, rhs Transition }

func Or(lhs, rhs Transition) Transition { return or{lhs: lhs, rhs: rhs} }

func (t or) Available(ctx Context) bool {
	l := t.lhs.Available(ctx)
	r := t.rhs.Available(ctx)
	return l || r
}
