package service

import "github.com/birdwell/trading-cards/internal/sse"

// EventEmitter publishes collection changes to live clients.
// *sse.Manager implements it.
type EventEmitter interface {
	Emit(event sse.Event)
}

type noopEmitter struct{}

func (noopEmitter) Emit(sse.Event) {}

func emitterOrNoop(e EventEmitter) EventEmitter {
	if e == nil {
		return noopEmitter{}
	}
	return e
}

// SetEventEmitter wires change events for imports.
func (s *ImportService) SetEventEmitter(e EventEmitter) {
	s.events = emitterOrNoop(e)
}

// SetEventEmitter wires change events for set edits and deletes.
func (s *SetService) SetEventEmitter(e EventEmitter) {
	s.events = emitterOrNoop(e)
}

// SetEventEmitter wires change events for ownership changes and deletes.
func (s *CardService) SetEventEmitter(e EventEmitter) {
	s.events = emitterOrNoop(e)
}
