package relay

// Participant is a connected party the hub forwards events to.
type Participant interface {
	// ID identifies the connection. It is unique among connected participants.
	ID() string
	// Send delivers one event. It must not block on the participant's reads.
	Send(event string, args ...any) error
}
