package component

// RemovalRequest marks an entity for destruction at the end of the tick.
type RemovalRequest struct {
	Reason string
}

var RemovalRequestComponent = NewComponent[RemovalRequest]("removal_request")
