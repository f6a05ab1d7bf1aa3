package room

import (
	"slices"

	"golang.org/x/text/cases"
)

// Member is a connected participant as the room sees it.
type Member struct {
	ID     string
	Name   string
	Outbox Sender
}

// roster is room membership: ordered players, spectators and the host.
// It holds no locks; the room actor is its only user.
type roster struct {
	maxPlayers int
	hostID     string
	players    []Member
	spectators []Member
}

func newRoster(maxPlayers int, host Member) roster {
	return roster{
		maxPlayers: maxPlayers,
		hostID:     host.ID,
		players:    []Member{host},
	}
}

func indexOf(ms []Member, id string) int {
	return slices.IndexFunc(ms, func(m Member) bool { return m.ID == id })
}

// addPlayer is idempotent for an id already seated. The first player to sit
// in a hostless room becomes host.
func (r *roster) addPlayer(m Member) error {
	if indexOf(r.players, m.ID) >= 0 {
		return nil
	}
	if len(r.players) >= r.maxPlayers {
		return ErrRoomFull
	}
	r.players = append(r.players, m)
	if r.hostID == "" {
		r.hostID = m.ID
	}
	return nil
}

func (r *roster) full() bool { return len(r.players) >= r.maxPlayers }

func (r *roster) addSpectator(m Member) {
	if indexOf(r.spectators, m.ID) >= 0 {
		return
	}
	r.spectators = append(r.spectators, m)
}

// remove drops id from both lists. If the host left, the first remaining
// player is elected; hostChanged reports that.
func (r *roster) remove(id string) (m Member, wasPlayer, hostChanged, ok bool) {
	if i := indexOf(r.players, id); i >= 0 {
		m, wasPlayer, ok = r.players[i], true, true
		r.players = slices.Delete(r.players, i, i+1)
	}
	if i := indexOf(r.spectators, id); i >= 0 {
		if !ok {
			m, ok = r.spectators[i], true
		}
		r.spectators = slices.Delete(r.spectators, i, i+1)
	}
	if ok && r.hostID == id {
		r.hostID = ""
		if len(r.players) > 0 {
			r.hostID = r.players[0].ID
		}
		hostChanged = true
	}
	return m, wasPlayer, hostChanged, ok
}

func (r *roster) member(id string) (m Member, isPlayer, ok bool) {
	if i := indexOf(r.players, id); i >= 0 {
		return r.players[i], true, true
	}
	if i := indexOf(r.spectators, id); i >= 0 {
		return r.spectators[i], false, true
	}
	return Member{}, false, false
}

func (r *roster) host() (Member, bool) {
	if i := indexOf(r.players, r.hostID); i >= 0 {
		return r.players[i], true
	}
	return Member{}, false
}

func (r *roster) isEmpty() bool {
	return len(r.players) == 0 && len(r.spectators) == 0
}

// all returns players then spectators.
func (r *roster) all() []Member {
	return slices.Concat(r.players, r.spectators)
}

// nameTaken compares case-folded display names against everyone but exceptID.
func (r *roster) nameTaken(name, exceptID string) bool {
	fold := cases.Fold()
	want := fold.String(name)
	for _, m := range r.all() {
		if m.ID != exceptID && fold.String(m.Name) == want {
			return true
		}
	}
	return false
}
