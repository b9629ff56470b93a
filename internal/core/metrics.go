package core

// Metrics receives counters from the core. Implementations must be safe for concurrent use.
type Metrics interface {
	SetLiveConnections(n int)
	AdmissionRejected()
	SessionSuperseded()
	MessagePersisted()
	MessageRouted(live bool)
	PersistenceFailed(op string)
	PresenceBroadcast(online bool)
	DeliveryDropped(event string)
}

type nopMetrics struct{}

func (nopMetrics) SetLiveConnections(int) {}
func (nopMetrics) AdmissionRejected() {}
func (nopMetrics) SessionSuperseded() {}
func (nopMetrics) MessagePersisted() {}
func (nopMetrics) MessageRouted(bool) {}
func (nopMetrics) PersistenceFailed(string) {}
func (nopMetrics) PresenceBroadcast(bool) {}
func (nopMetrics) DeliveryDropped(string) {}
