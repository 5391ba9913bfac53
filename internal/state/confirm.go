package state

import "fmt"

// Pending is an action waiting for confirmation.
type Pending struct {
	Ticket  string
	Action  Action
	Summary string
}

// Confirmations implements the request/confirm protocol for destructive
// actions. The mechanism that asks the user (prompt, dialog, --yes) lives
// with the caller.
type Confirmations struct {
	newID   func() string
	pending map[string]Pending
}

// NewConfirmations returns an empty registry. A nil newID uses random UUIDs.
func NewConfirmations(newID func() string) *Confirmations {
	if newID == nil {
		newID = DefaultEnv().NewID
	}
	return &Confirmations{newID: newID, pending: map[string]Pending{}}
}

// Request registers a and returns its ticket.
func (c *Confirmations) Request(a Action, summary string) Pending {
	p := Pending{Ticket: c.newID(), Action: a, Summary: summary}
	c.pending[p.Ticket] = p
	return p
}

// Take removes and returns the pending action for ticket.
func (c *Confirmations) Take(ticket string) (Action, error) {
	p, ok := c.pending[ticket]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticket, ErrUnknownTicket)
	}
	delete(c.pending, ticket)
	return p.Action, nil
}

// Cancel drops a pending action; it reports whether the ticket existed.
func (c *Confirmations) Cancel(ticket string) bool {
	_, ok := c.pending[ticket]
	delete(c.pending, ticket)
	return ok
}

// Len returns the number of open requests.
func (c *Confirmations) Len() int {
	return len(c.pending)
}
