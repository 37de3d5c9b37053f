package app

import (
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/usecase"
)

// liveStateFanout forwards each live state to the websocket hub and the event bus.
type liveStateFanout []usecase.LiveStateBroadcaster

func (f liveStateFanout) Broadcast(state match.State) {
	for _, target := range f {
		target.Broadcast(state)
	}
}
