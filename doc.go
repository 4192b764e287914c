// Package arcade is an arcade-style 2D collision layer for [Ebitengine] games.
//
// Arcade provides the broad-phase, the swept-AABB narrow-phase and the
// separation response that a platformer or shoot-'em-up needs every tick:
// a quadtree rebuilt per query from pooled records, overlap callbacks, and a
// mass and elasticity weighted push-apart that sets touching flags.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop around a [World] and draws hitboxes:
//
//	world := arcade.NewWorld(arcade.DefaultConfig())
//	player := arcade.NewEntity("player", 32, 32, 16, 16)
//	floor := arcade.NewEntity("floor", 0, 400, 640, 16)
//	floor.Immovable = true
//	world.Root().AddChild(player)
//	world.Root().AddChild(floor)
//	world.SetUpdateFunc(func(dt float64) error {
//		world.Collide(player, floor, nil)
//		return nil
//	})
//	arcade.Run(world, arcade.RunConfig{Title: "My Game"})
//
// For full control, implement [ebiten.Game] yourself and call
// [World.Update] and [World.DrawDebug] directly.
//
// # Nodes
//
// Every collidable thing is a [Node]. Entities are boxes with motion state;
// containers group entities (and other containers) so a whole group can be
// tested with one call:
//
//	enemies := arcade.NewContainer("enemies")
//	world.Root().AddChild(enemies)
//	world.Overlap(bullets, enemies, func(b, e *arcade.Node) {
//		b.Kill()
//		e.Hurt(1)
//	}, nil)
//
// Callbacks may stage container changes with [Node.Add] and [Node.Remove];
// they take effect on the next [World.Update] or top-level query.
//
// # Separation
//
// [World.Collide] runs [World.Separate] on every overlapping pair. A pair is
// resolved only if the overlap could have happened this tick (the sum of
// both movements plus the separate bias), and only on sides allowed by
// [Node.AllowCollisions]. Immovable nodes never move; two movable nodes
// split the correction and exchange momentum weighted by [Node.Mass] and
// [Node.Elasticity].
//
// Tweens (via [gween]) drive moving platforms, and collision events can be
// mirrored into an ECS (via the [Donburi] adapter in arcade/ecs).
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package arcade
