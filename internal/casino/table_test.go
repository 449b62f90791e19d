// internal/casino/table_test.go
package casino

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, c *Casino, settings TableSettings) *Table {
	t.Helper()
	tab, err := c.CreateTable(context.Background(), "chan1", KindBlackjack, settings)
	require.NoError(t, err)
	return tab
}

func mustPlayer(t *testing.T, c *Casino, userID string) *Player {
	t.Helper()
	p, _, err := c.CreatePlayer(context.Background(), userID)
	require.NoError(t, err)
	return p
}

func TestJoinSingleSeatInvariant(t *testing.T) {
	c, _, client := newTestCasino(t)
	t1 := mustTable(t, c, manualSettings())
	t2 := mustTable(t, c, manualSettings())
	alice := mustPlayer(t, c, "alice")

	press(c, t1.ID(), "alice", CustomIDJoin)
	assert.Equal(t, t1.ID(), alice.TableID())

	press(c, t2.ID(), "alice", CustomIDJoin)
	assert.Contains(t, client.lastResponse().Content, "already seated")
	assert.True(t, client.lastResponse().Ephemeral)
	assert.Equal(t, t1.ID(), alice.TableID(), "a player holds at most one seat guild-wide")
	assert.Empty(t, t2.players)

	press(c, t1.ID(), "alice", CustomIDJoin)
	assert.Contains(t, client.lastResponse().Content, "already seated")
	assert.Len(t, t1.players, 1)
}

func TestJoinRejectedBelowMinBetBalance(t *testing.T) {
	c, store, client := newTestCasino(t)
	tab := mustTable(t, c, manualSettings())
	require.NoError(t, store.UpsertPlayer(context.Background(), &PlayerRecord{
		GuildID: "guild1", UserID: "poor", Balance: 5,
	}))

	press(c, tab.ID(), "poor", CustomIDJoin)
	assert.Contains(t, client.lastResponse().Content, "balance is too low")
	assert.Empty(t, tab.players)
}

func TestJoinRejectedWhenFull(t *testing.T) {
	c, _, client := newTestCasino(t)
	settings := manualSettings()
	settings.MaxPlayers = 1
	tab := mustTable(t, c, settings)
	mustPlayer(t, c, "alice")
	mustPlayer(t, c, "bob")

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "bob", CustomIDJoin)
	assert.Contains(t, client.lastResponse().Content, "full")
	assert.Len(t, tab.players, 1)
}

func TestLeaveOnlyInLobby(t *testing.T) {
	c, _, client := newTestCasino(t)
	tab := mustTable(t, c, manualSettings())
	alice := mustPlayer(t, c, "alice")

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "alice", CustomIDStart)
	require.Equal(t, StateBetting, tab.State())

	press(c, tab.ID(), "alice", CustomIDLeave)
	assert.Contains(t, client.lastResponse().Content, "not available")
	assert.Len(t, tab.players, 1)
	assert.Equal(t, tab.ID(), alice.TableID())
}

func TestLeaveUnseats(t *testing.T) {
	c, _, _ := newTestCasino(t)
	tab := mustTable(t, c, manualSettings())
	alice := mustPlayer(t, c, "alice")

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "alice", CustomIDLeave)
	assert.Empty(t, tab.players)
	assert.Empty(t, alice.TableID())
	assert.EqualValues(t, 1000, alice.Balance())
}

func TestStartNowNeedsSeatedPlayers(t *testing.T) {
	c, _, client := newTestCasino(t)
	settings := manualSettings()
	settings.MinPlayers = 2
	tab := mustTable(t, c, settings)
	mustPlayer(t, c, "alice")

	press(c, tab.ID(), "alice", CustomIDStart)
	assert.Contains(t, client.lastResponse().Content, "not seated")
	assert.Equal(t, StateLobby, tab.State())

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "alice", CustomIDStart)
	assert.Contains(t, client.lastResponse().Content, "not available")
	assert.Equal(t, StateLobby, tab.State(), "one seat below the minimum must not start betting")
}

func TestStartNowRejectsBystander(t *testing.T) {
	c, _, client := newTestCasino(t)
	tab := mustTable(t, c, manualSettings())
	mustPlayer(t, c, "alice")
	mustPlayer(t, c, "bob")

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "bob", CustomIDStart)
	assert.Contains(t, client.lastResponse().Content, "not seated")
	assert.Equal(t, StateLobby, tab.State(), "a member without a seat cannot start the round")

	press(c, tab.ID(), "alice", CustomIDStart)
	assert.Equal(t, StateBetting, tab.State())
}

func TestBetReplaceRefundsFirst(t *testing.T) {
	c, _, _ := newTestCasino(t)
	tab := mustTable(t, c, manualSettings())
	alice := mustPlayer(t, c, "alice")
	mustPlayer(t, c, "bob")

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "bob", CustomIDJoin)
	press(c, tab.ID(), "alice", CustomIDStart)
	require.Equal(t, StateBetting, tab.State())

	press(c, tab.ID(), "alice", CustomIDBet, "800")
	assert.EqualValues(t, 200, alice.Balance())
	assert.EqualValues(t, 800, tab.bets["alice"])

	// Replacing a wager refunds the old one before debiting the new one,
	// so 900 is affordable even though 200 + 900 is not.
	press(c, tab.ID(), "alice", CustomIDBet, "900")
	assert.EqualValues(t, 100, alice.Balance())
	assert.EqualValues(t, 900, tab.bets["alice"])

	// An unaffordable replacement clears the wager without debiting.
	press(c, tab.ID(), "alice", CustomIDBet, "2000")
	assert.EqualValues(t, 1000, alice.Balance())
	_, ok := tab.bets["alice"]
	assert.False(t, ok)
	assert.Equal(t, StateBetting, tab.State())
}

func TestBetOutOfRangeRejected(t *testing.T) {
	c, _, client := newTestCasino(t)
	settings := manualSettings()
	settings.MaxBet = 100
	tab := mustTable(t, c, settings)
	alice := mustPlayer(t, c, "alice")

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "alice", CustomIDStart)

	press(c, tab.ID(), "alice", CustomIDBet, "5")
	assert.Contains(t, client.lastResponse().Content, "outside the table limits")
	press(c, tab.ID(), "alice", CustomIDBet, "500")
	assert.Contains(t, client.lastResponse().Content, "outside the table limits")
	assert.EqualValues(t, 1000, alice.Balance())
	assert.Empty(t, tab.bets)
}

func TestBettingEndsWhenEveryoneHasBet(t *testing.T) {
	c, _, _ := newTestCasino(t)
	tab := mustTable(t, c, manualSettings())
	mustPlayer(t, c, "alice")
	mustPlayer(t, c, "bob")

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "bob", CustomIDJoin)
	press(c, tab.ID(), "alice", CustomIDStart)

	press(c, tab.ID(), "alice", CustomIDBet, "100")
	assert.Equal(t, StateBetting, tab.State(), "one bet outstanding keeps betting open")
	press(c, tab.ID(), "bob", CustomIDBet, "50")
	assert.Equal(t, StatePlaying, tab.State(), "last recorded bet ends betting early")
}

// TestTimersDriveFullRound exercises the unattended path: lobby
// countdown, forced minimum bet, forced stay on turn timeout, dealer
// playout and the return to an empty lobby.
func TestTimersDriveFullRound(t *testing.T) {
	c, _, _ := newTestCasino(t)
	settings := manualSettings()
	settings.LobbyTimeMs = 25
	settings.BettingTimeMs = 25
	settings.TurnTimeMs = 25
	settings.EndTimeMs = 25
	tab := mustTable(t, c, settings)
	alice := mustPlayer(t, c, "alice")

	press(c, tab.ID(), "alice", CustomIDJoin)

	require.Eventually(t, func() bool {
		tab.mu.Lock()
		defer tab.mu.Unlock()
		return tab.state == StateLobby && len(tab.players) == 0
	}, 3*time.Second, 10*time.Millisecond, "round must complete without any player input")

	assert.Empty(t, alice.TableID())
	// Forced minimum bet of 10: loss, push or win.
	assert.Contains(t, []int64{990, 1000, 1010}, alice.Balance())
	tab.mu.Lock()
	assert.Empty(t, tab.bets)
	tab.mu.Unlock()
}

// TestStaleBettingTimerIsIgnored arms a real betting countdown, beats it
// with the all-bets early exit, then fires the orphaned callback by hand.
// The stale generation must make it a no-op: the wager stays as placed
// and no turn is forced.
func TestStaleBettingTimerIsIgnored(t *testing.T) {
	c, _, _ := newTestCasino(t)
	settings := manualSettings()
	settings.BettingTimeMs = 60_000
	tab := mustTable(t, c, settings)
	mustPlayer(t, c, "alice")

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "alice", CustomIDStart)
	require.Equal(t, StateBetting, tab.State())

	tab.mu.Lock()
	require.NotNil(t, tab.timer, "entering Betting must arm the countdown")
	staleGen := tab.timerGen
	tab.mu.Unlock()

	press(c, tab.ID(), "alice", CustomIDBet, "100")
	require.Equal(t, StatePlaying, tab.State(), "last recorded bet outruns the countdown")

	tab.runScheduled(staleGen)

	assert.Equal(t, StatePlaying, tab.State())
	tab.mu.Lock()
	bj := tab.game.(*blackjack)
	assert.Equal(t, 0, bj.currentTurn, "a stale betting timer must not force progress")
	assert.EqualValues(t, 100, tab.bets["alice"], "a stale betting timer must not rewrite the wager")
	tab.mu.Unlock()
}

// TestJoinDoesNotRearmLobbyCountdown: once the countdown is pending,
// later joins schedule with override off, so the original deadline
// stands.
func TestJoinDoesNotRearmLobbyCountdown(t *testing.T) {
	c, _, _ := newTestCasino(t)
	settings := manualSettings()
	settings.LobbyTimeMs = 60_000
	tab := mustTable(t, c, settings)
	mustPlayer(t, c, "alice")
	mustPlayer(t, c, "bob")

	press(c, tab.ID(), "alice", CustomIDJoin)
	tab.mu.Lock()
	require.NotNil(t, tab.timer, "reaching the minimum arms the countdown")
	armedGen := tab.timerGen
	tab.mu.Unlock()

	press(c, tab.ID(), "bob", CustomIDJoin)
	tab.mu.Lock()
	assert.Equal(t, armedGen, tab.timerGen, "a later join must not replace the pending countdown")
	assert.NotNil(t, tab.timer)
	tab.stopRunLocked()
	tab.mu.Unlock()
}

// TestEndedAlwaysSchedulesReturnToLobby: with the end timer zeroed the
// fallback delay still arms, so a finished round can never wedge in
// Ended.
func TestEndedAlwaysSchedulesReturnToLobby(t *testing.T) {
	c, _, _ := newTestCasino(t)
	tab := mustTable(t, c, manualSettings())
	mustPlayer(t, c, "alice")

	startRound(t, c, tab, map[string]string{"alice": "100"})
	press(c, tab.ID(), "alice", CustomIDStay)
	waitEnded(t, tab)

	tab.mu.Lock()
	assert.NotNil(t, tab.timer, "Ended must always carry a pending return to Lobby")
	tab.stopRunLocked()
	tab.mu.Unlock()
}

func TestLobbyCountdownWaitsForMinPlayers(t *testing.T) {
	c, _, _ := newTestCasino(t)
	settings := manualSettings()
	settings.MinPlayers = 2
	settings.LobbyTimeMs = 20
	tab := mustTable(t, c, settings)
	mustPlayer(t, c, "alice")

	press(c, tab.ID(), "alice", CustomIDJoin)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StateLobby, tab.State(), "one player below minimum must not start betting")
}

func TestLeaveBelowMinPlayersStopsCountdown(t *testing.T) {
	c, _, _ := newTestCasino(t)
	settings := manualSettings()
	settings.MinPlayers = 2
	settings.LobbyTimeMs = 30
	tab := mustTable(t, c, settings)
	mustPlayer(t, c, "alice")
	mustPlayer(t, c, "bob")

	press(c, tab.ID(), "alice", CustomIDJoin)
	press(c, tab.ID(), "bob", CustomIDJoin)
	press(c, tab.ID(), "bob", CustomIDLeave)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, StateLobby, tab.State(), "countdown armed at two players must not fire after one leaves")
}
