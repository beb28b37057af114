// Package realtime tells connected viewers that station state changed.
//
// There is a single topic and notifications carry no payload: viewers refetch
// the station list when told to. Delivery is best-effort.
package realtime

// Notifier is called after a station change has been persisted.
// Implementations must not block the caller on delivery.
type Notifier interface {
	NotifyStationsChanged()
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func()

func (f NotifierFunc) NotifyStationsChanged() { f() }

