package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster_AddPlayerCapacity(t *testing.T) {
	r := newRoster(2, Member{ID: "a", Name: "Ana"})
	require.NoError(t, r.addPlayer(Member{ID: "b", Name: "Bo"}))
	require.NoError(t, r.addPlayer(Member{ID: "b", Name: "Bo"}))
	require.ErrorIs(t, r.addPlayer(Member{ID: "c", Name: "Cy"}), ErrRoomFull)
	assert.Len(t, r.players, 2)

	r.addSpectator(Member{ID: "s", Name: "Sam"})
	r.addSpectator(Member{ID: "s", Name: "Sam"})
	assert.Len(t, r.spectators, 1)
}

func TestRoster_RemoveReelectsHost(t *testing.T) {
	r := newRoster(4, Member{ID: "a", Name: "Ana"})
	require.NoError(t, r.addPlayer(Member{ID: "b", Name: "Bo"}))
	require.NoError(t, r.addPlayer(Member{ID: "c", Name: "Cy"}))

	_, wasPlayer, hostChanged, ok := r.remove("b")
	assert.True(t, ok)
	assert.True(t, wasPlayer)
	assert.False(t, hostChanged)
	assert.Equal(t, "a", r.hostID)

	m, _, hostChanged, ok := r.remove("a")
	assert.True(t, ok)
	assert.True(t, hostChanged)
	assert.Equal(t, "Ana", m.Name)
	assert.Equal(t, "c", r.hostID)

	_, _, hostChanged, _ = r.remove("c")
	assert.True(t, hostChanged)
	assert.Empty(t, r.hostID)
	assert.True(t, r.isEmpty())

	_, _, _, ok = r.remove("c")
	assert.False(t, ok)
}

func TestRoster_NameTaken(t *testing.T) {
	r := newRoster(4, Member{ID: "a", Name: "Straße"})
	r.addSpectator(Member{ID: "s", Name: "Sam"})

	assert.True(t, r.nameTaken("STRASSE", "x"))
	assert.True(t, r.nameTaken("sam", "x"))
	assert.False(t, r.nameTaken("sam", "s"))
	assert.False(t, r.nameTaken("Bo", "x"))
}
