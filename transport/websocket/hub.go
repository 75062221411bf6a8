package websocket

import "sync"

// member is anything that can receive a server event. Tests use fakes;
// production members are *Client values.
type member interface {
	Send(msg Message)
}

// Hub maps room codes to the set of connections bound to them. Events for
// a room are delivered to exactly that set and nobody else.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[member]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[member]struct{})}
}

func (that *Hub) Add(code string, m member) {
	that.mu.Lock()
	defer that.mu.Unlock()

	set, ok := that.rooms[code]
	if !ok {
		set = make(map[member]struct{})
		that.rooms[code] = set
	}
	set[m] = struct{}{}
}

func (that *Hub) Remove(code string, m member) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if set, ok := that.rooms[code]; ok {
		delete(set, m)
		if len(set) == 0 {
			delete(that.rooms, code)
		}
	}
}

func (that *Hub) Broadcast(code string, msg Message) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for m := range that.rooms[code] {
		m.Send(msg)
	}
}

// BroadcastExcept delivers to every room member but one; used for events
// addressed to the opponent, like a rematch request.
func (that *Hub) BroadcastExcept(code string, except member, msg Message) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for m := range that.rooms[code] {
		if m != except {
			m.Send(msg)
		}
	}
}
