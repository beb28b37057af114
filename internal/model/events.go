package model

// EventType identifies the type of realtime event
type EventType string

const (
	// EventConnected is sent once when a viewer subscribes
	EventConnected EventType = "connected"
	// EventStationsChanged tells viewers to re-query the station list. It carries no payload.
	EventStationsChanged EventType = "stations-changed"
)
