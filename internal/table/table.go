package table

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdem-table/internal/deck"
)

// nextHandDelay is the fixed delay before the next hand auto-starts after a
// showdown or fold-out, per SPEC_FULL.md §4.5.
const nextHandDelay = 5 * time.Second

// maxSeats is the table's seat cap (SPEC_FULL.md §1: "up to six
// concurrently connected players").
const maxSeats = 6

// maxLogEntries bounds the table's recent-events ring (SPEC_FULL.md §4.7).
const maxLogEntries = 40

// LogEntry is one row of the bounded recent-events ring.
type LogEntry struct {
	Time    time.Time
	Message string
}

// Table is the process-wide singleton table described by SPEC_FULL.md §3:
// it owns every Player record, the live Hand, and the event-ordering mutex
// that makes it a single-writer monitor (§5). Every exported method takes
// the mutex for its entire body. The server's broadcast that follows an
// event runs after the method has returned and released the mutex; each
// per-viewer View call takes it again, so another event can be handled
// between the mutation and its broadcast.
type Table struct {
	mu sync.Mutex

	seats []*Player // insertion order = ring order

	startingStack int
	smallBlind    int
	bigBlind      int

	gameStarted    bool // true from StartGame until the table returns to lobby
	handInProgress bool // true only while a hand is actually being played
	handNumber     int
	dealerSeat     int // index into seats; persists across hands

	hand *Hand

	logs []LogEntry

	rng    *rand.Rand
	clock  quartz.Clock
	logger *log.Logger

	pendingTimer quartz.Timer
	onNextHand   func() // invoked by the timer callback; set by the server layer
}

// New creates an empty table in the lobby phase.
func New(startingStack, smallBlind, bigBlind int, rng *rand.Rand, clock quartz.Clock, logger *log.Logger) *Table {
	return &Table{
		startingStack: startingStack,
		smallBlind:    smallBlind,
		bigBlind:      bigBlind,
		dealerSeat:    -1,
		rng:           rng,
		clock:         clock,
		logger:        logger,
	}
}

// SetNextHandCallback wires the function the inter-hand timer invokes when
// it fires. The server layer uses this to re-enter Table under lock and
// broadcast the resulting state.
func (t *Table) SetNextHandCallback(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onNextHand = fn
}

// sanitizeName implements the §3 display-name grammar: trim, collapse
// internal whitespace, and require 2-20 characters.
func sanitizeName(name string) (string, error) {
	fields := strings.Fields(name)
	clean := strings.Join(fields, " ")
	if len(clean) < 2 || len(clean) > 20 {
		return "", fmt.Errorf("name must be 2-20 characters")
	}
	return clean, nil
}

func (t *Table) findSeat(id string) *Player {
	for _, p := range t.seats {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Join implements the `join` inbound event (SPEC_FULL.md §6): not already
// seated, game not started, name sanitizes to 2-20 chars. The first player
// ever seated becomes admin.
func (t *Table) Join(id, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.findSeat(id) != nil {
		return fmt.Errorf("already seated")
	}
	if t.gameStarted {
		return fmt.Errorf("game already started")
	}
	if len(t.seats) >= maxSeats {
		return fmt.Errorf("table is full")
	}
	clean, err := sanitizeName(name)
	if err != nil {
		return err
	}

	p := NewPlayer(id, clean, t.startingStack)
	if len(t.seats) == 0 {
		p.IsAdmin = true
	}
	t.seats = append(t.seats, p)
	t.log("%s joined the table", clean)
	return nil
}

// SetStartingStack implements the `setStartingStack` inbound event: admin
// only, game not started, amount in [50, 1_000_000].
func (t *Table) SetStartingStack(viewerID string, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireAdmin(viewerID); err != nil {
		return err
	}
	if t.gameStarted {
		return fmt.Errorf("game already started")
	}
	if amount < 50 || amount > 1_000_000 {
		return fmt.Errorf("starting stack must be between 50 and 1,000,000")
	}

	t.startingStack = amount
	for _, p := range t.seats {
		p.Chips = amount
	}
	t.log("starting stack set to %d", amount)
	return nil
}

func (t *Table) requireAdmin(viewerID string) error {
	p := t.findSeat(viewerID)
	if p == nil || !p.IsAdmin {
		return fmt.Errorf("admin only")
	}
	return nil
}

// StartGame implements the `startGame` inbound event: admin only, game not
// started, at least 2 connected players.
func (t *Table) StartGame(viewerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireAdmin(viewerID); err != nil {
		return err
	}
	if t.gameStarted {
		return fmt.Errorf("game already started")
	}
	if t.connectedCount() < 2 {
		return fmt.Errorf("need at least 2 players to start")
	}

	t.cancelPendingTimer()
	t.gameStarted = true
	t.startHandLocked()
	return nil
}

func (t *Table) connectedCount() int {
	n := 0
	for _, p := range t.seats {
		if !p.Disconnected {
			n++
		}
	}
	return n
}

// startHandLocked implements SPEC_FULL.md §4.5's "starting a hand"
// sequence. Caller must hold t.mu.
func (t *Table) startHandLocked() {
	t.removeDisconnected()
	t.reassignAdminIfAbsent()

	eligible := t.eligiblePlayers()
	if len(eligible) < 2 {
		t.gameStarted = false
		if len(eligible) == 1 {
			t.log("%s wins, not enough players to continue", eligible[0].Name)
		}
		return
	}

	for _, p := range t.seats {
		if containsPlayer(eligible, p) {
			p.InHand = true
		} else {
			p.sitOut()
		}
	}

	t.advanceDealer(eligible)
	ring := t.ringFromDealer(eligible)

	t.handNumber++
	d := deck.NewDeck(t.rng)
	t.hand = newHand(ring, t.smallBlind, t.bigBlind, d)
	t.handInProgress = true
	t.log("hand #%d started, dealer is %s", t.handNumber, ring[0].Name)

	if t.hand.IsComplete() {
		t.finishHandLocked()
	}
}

func containsPlayer(list []*Player, p *Player) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

func (t *Table) removeDisconnected() {
	if t.handInProgress {
		return // only remove between hands, per SPEC_FULL.md §4.7
	}
	var kept []*Player
	dealer := t.dealerSeat
	for i, p := range t.seats {
		if !p.Disconnected {
			kept = append(kept, p)
		} else if i <= t.dealerSeat {
			dealer-- // keep dealerSeat pointing at the same place in the ring
		}
	}
	t.seats = kept
	t.dealerSeat = dealer
}

func (t *Table) reassignAdminIfAbsent() {
	for _, p := range t.seats {
		if p.IsAdmin && !p.Disconnected {
			return
		}
	}
	for _, p := range t.seats {
		if !p.Disconnected {
			p.IsAdmin = true
			return
		}
	}
}

func (t *Table) eligiblePlayers() []*Player {
	var out []*Player
	for _, p := range t.seats {
		if !p.Disconnected && p.Chips > 0 {
			out = append(out, p)
		}
	}
	return out
}

// advanceDealer moves the dealer button to the next eligible player in seat
// order, wrapping. The first hand seats index 0.
func (t *Table) advanceDealer(eligible []*Player) {
	if t.dealerSeat == -1 {
		t.dealerSeat = t.seatIndex(eligible[0].ID)
		return
	}
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		idx := (t.dealerSeat + i) % n
		if containsPlayer(eligible, t.seats[idx]) {
			t.dealerSeat = idx
			return
		}
	}
}

func (t *Table) seatIndex(id string) int {
	for i, p := range t.seats {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ringFromDealer returns the eligible players reordered starting at the
// dealer, matching Hand's ring-order convention (index 0 = dealer).
func (t *Table) ringFromDealer(eligible []*Player) []*Player {
	dealer := t.seats[t.dealerSeat]
	start := 0
	for i, p := range eligible {
		if p == dealer {
			start = i
			break
		}
	}
	n := len(eligible)
	ring := make([]*Player, n)
	for i := 0; i < n; i++ {
		ring[i] = eligible[(start+i)%n]
	}
	return ring
}

// Action implements the `action` inbound event.
func (t *Table) Action(viewerID string, action ActionType, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.handInProgress || t.hand == nil {
		return fmt.Errorf("hand not in progress")
	}
	p := t.findSeat(viewerID)
	if p == nil {
		return fmt.Errorf("not seated")
	}
	seat := t.hand.seatIndexOf(p)
	if seat == -1 {
		return fmt.Errorf("not in this hand")
	}

	if err := t.hand.ProcessAction(seat, action, amount); err != nil {
		return err
	}
	t.log("%s %s", p.Name, describeAction(action, amount))

	if t.hand.IsComplete() {
		t.finishHandLocked()
	}
	return nil
}

func describeAction(action ActionType, amount int) string {
	switch action {
	case Raise:
		return fmt.Sprintf("raises to %d", amount)
	default:
		return action.String() + "s"
	}
}

// Disconnect implements §4.7's disconnect handling: an actionable player
// mid-hand is force-folded (advancing turn if it was theirs); an all-in
// player stays through showdown; removal from the seat list happens only
// between hands (startHandLocked).
func (t *Table) Disconnect(viewerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.findSeat(viewerID)
	if p == nil {
		return
	}
	p.Disconnected = true
	t.log("%s disconnected", p.Name)

	if t.hand == nil || !t.handInProgress || !p.InHand {
		return
	}
	seat := t.hand.seatIndexOf(p)
	if seat == -1 {
		return
	}
	t.hand.ForceFold(seat)

	if t.hand.IsComplete() {
		t.finishHandLocked()
	}
}

// finishHandLocked implements §4.5's "finishing" step: clear the
// hand-in-progress flag and either schedule the next hand or, if too few
// eligible players remain, return the table to the lobby. gameStarted stays
// true across the inter-hand delay (SPEC_FULL.md §6 keeps gameStarted and
// handInProgress as distinct state) so Join and SetStartingStack continue to
// reject late entrants and stack changes during that window. Caller must
// hold t.mu.
func (t *Table) finishHandLocked() {
	if t.hand.lastShowdown != nil {
		for id, desc := range t.hand.lastShowdown.Descriptions {
			if p := t.findSeat(id); p != nil {
				t.log("%s shows %s", p.Name, desc)
			}
		}
		for _, payout := range t.hand.lastShowdown.Payouts {
			if p := t.findSeat(payout.PlayerID); p != nil {
				t.log("%s wins %d", p.Name, payout.Amount)
			}
		}
	}

	t.handInProgress = false

	if len(t.eligiblePlayers()) >= 2 {
		t.scheduleNextHand()
	} else {
		t.gameStarted = false
	}
}

func (t *Table) scheduleNextHand() {
	t.cancelPendingTimer()
	t.pendingTimer = t.clock.AfterFunc(nextHandDelay, func() {
		t.mu.Lock()
		t.startHandLocked()
		cb := t.onNextHand
		t.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

func (t *Table) cancelPendingTimer() {
	if t.pendingTimer != nil {
		t.pendingTimer.Stop()
		t.pendingTimer = nil
	}
}

func (t *Table) log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.logs = append(t.logs, LogEntry{Time: t.clock.Now(), Message: msg})
	if len(t.logs) > maxLogEntries {
		t.logs = t.logs[len(t.logs)-maxLogEntries:]
	}
	if t.logger != nil {
		t.logger.Info(msg)
	}
}

func (h *Hand) seatIndexOf(p *Player) int {
	for i, x := range h.players {
		if x == p {
			return i
		}
	}
	return -1
}
