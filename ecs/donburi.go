// Package ecs provides ECS adapters for arcade.
package ecs

import (
	"github.com/phanxgames/arcade"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// CollisionEventType is the Donburi event type for arcade collision events.
// Subscribe to this in your ECS systems to receive every pair accepted by
// World.Overlap and World.Collide.
var CollisionEventType = events.NewEventType[arcade.CollisionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Collision events are published to CollisionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) arcade.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event arcade.CollisionEvent) {
	CollisionEventType.Publish(s.world, event)
}
