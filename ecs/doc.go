// Package ecs provides ECS adapters for arcade's collision events.
//
// The primary adapter is [NewDonburiStore], which bridges accepted overlap
// and collide pairs into a [Donburi] world as typed events. Set
// [arcade.Node.EntityID] on the nodes you care about so handlers can map a
// pair back to entities, then subscribe to [CollisionEventType].
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	arcadeWorld.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
