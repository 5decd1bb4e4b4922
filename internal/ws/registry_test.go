package ws

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("attach and snapshot", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("7", "a")
		r.Attach("7", "b")
		r.Attach("9", "c")

		require.ElementsMatch(t, []string{"a", "b"}, r.SessionsFor("7"))
		require.ElementsMatch(t, []string{"c"}, r.SessionsFor("9"))
		require.Equal(t, 2, r.Users())
		require.Equal(t, 3, r.Sessions())
	})

	t.Run("attach is idempotent per pair", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("7", "a")
		r.Attach("7", "a")
		require.Len(t, r.SessionsFor("7"), 1)
	})

	t.Run("detach removes empty user keys", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("7", "a")
		r.Detach("a")

		require.Empty(t, r.SessionsFor("7"))
		require.Zero(t, r.Users())
		require.Zero(t, r.Sessions())
	})

	t.Run("detach of unknown session is a no-op", func(t *testing.T) {
		r := NewRegistry()
		r.Detach("ghost")
		require.Zero(t, r.Sessions())
	})

	t.Run("attach under a second user panics", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("7", "a")
		require.Panics(t, func() { r.Attach("9", "a") })
	})

	t.Run("snapshot survives concurrent detach", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("7", "a")
		r.Attach("7", "b")

		snap := r.SessionsFor("7")
		r.Detach("a")
		r.Detach("b")

		require.Len(t, snap, 2)
		require.Empty(t, r.SessionsFor("7"))
	})

	// Property: after any sequence of attach/detach operations the registry
	// reports exactly the currently attached sessions, and never a user with
	// an empty set.
	t.Run("random operation sequences keep the invariants", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		r := NewRegistry()
		expected := make(map[string]map[string]bool) // user -> sessions
		owner := make(map[string]string)

		for i := 0; i < 2000; i++ {
			sessionID := fmt.Sprintf("s%d", rng.Intn(50))
			userID := fmt.Sprintf("u%d", rng.Intn(10))

			if rng.Intn(3) == 0 {
				r.Detach(sessionID)
				if u, ok := owner[sessionID]; ok {
					delete(expected[u], sessionID)
					if len(expected[u]) == 0 {
						delete(expected, u)
					}
					delete(owner, sessionID)
				}
				continue
			}

			// an already-owned session may only re-attach to its owner
			if u, ok := owner[sessionID]; ok {
				userID = u
			}
			r.Attach(userID, sessionID)
			if expected[userID] == nil {
				expected[userID] = make(map[string]bool)
			}
			expected[userID][sessionID] = true
			owner[sessionID] = userID
		}

		require.Equal(t, len(expected), r.Users())
		require.Equal(t, len(owner), r.Sessions())
		for user, sessions := range expected {
			got := r.SessionsFor(user)
			require.Len(t, got, len(sessions), user)
			for _, id := range got {
				require.True(t, sessions[id], id)
			}
		}
	})
}
