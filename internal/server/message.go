package server

import (
	"encoding/json"
	"time"

	"github.com/lox/holdem-table/internal/advisor"
	"github.com/lox/holdem-table/internal/deck"
	"github.com/lox/holdem-table/internal/table"
)

// Message is the typed JSON envelope wrapping every inbound and outbound
// event (SPEC_FULL.md §6): `{type, data, timestamp}` keeps the wire format
// self-describing even though the event set itself is closed.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		dataBytes, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = dataBytes
	}
	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// Client -> Server payloads

// JoinData is the `join` event payload.
type JoinData struct {
	Name string `json:"name"`
}

// SetStartingStackData is the `setStartingStack` event payload.
type SetStartingStackData struct {
	Amount int `json:"amount"`
}

// ActionData is the `action` event payload.
type ActionData struct {
	Type   string `json:"type"`
	Amount int    `json:"amount,omitempty"`
}

// Server -> Client payloads

// ErrorMessageData is the `errorMessage` event payload: a human string sent
// only to the offending socket.
type ErrorMessageData struct {
	Message string `json:"message"`
}

// PlayerStateData is one row of the `players` wire array.
type PlayerStateData struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Chips             int    `json:"chips"`
	IsAdmin           bool   `json:"isAdmin"`
	InHand            bool   `json:"inHand"`
	Folded            bool   `json:"folded"`
	AllIn             bool   `json:"allIn"`
	BetThisRound      int    `json:"betThisRound"`
	TotalContribution int    `json:"totalContribution"`
}

// LogEntryData is one row of the bounded log ring's wire representation.
type LogEntryData struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

// AvailableActionsData mirrors table.LegalActions for the wire.
type AvailableActionsData struct {
	CanFold    bool `json:"canFold"`
	CanCheck   bool `json:"canCheck"`
	CanCall    bool `json:"canCall"`
	CanRaise   bool `json:"canRaise"`
	CallAmount int  `json:"callAmount"`
	MinRaiseTo int  `json:"minRaiseTo"`
	MaxRaiseTo int  `json:"maxRaiseTo"`
}

// PayoutData is one row of a lastShowdown's payout list.
type PayoutData struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

// ShowdownData is the wire shape of the lastShowdown snapshot.
type ShowdownData struct {
	Board        []string          `json:"board"`
	Descriptions map[string]string `json:"descriptions"`
	Payouts      []PayoutData      `json:"payouts"`
}

// StateData is the full `state` event payload: the per-viewer projection
// from SPEC_FULL.md §4.7 plus the connection-layer envelope fields
// (`joined`, `youId`) that only the server package can supply.
type StateData struct {
	Joined bool   `json:"joined"`
	YouID  string `json:"youId"`

	GameStarted    bool   `json:"gameStarted"`
	HandInProgress bool   `json:"handInProgress"`
	HandNumber     int    `json:"handNumber"`
	Phase          string `json:"phase"`

	StartingStack int `json:"startingStack"`
	SmallBlind    int `json:"smallBlind"`
	BigBlind      int `json:"bigBlind"`

	Pot        int `json:"pot"`
	CurrentBet int `json:"currentBet"`

	DealerID      string `json:"dealerId"`
	SmallBlindID  string `json:"smallBlindId"`
	BigBlindID    string `json:"bigBlindId"`
	CurrentTurnID string `json:"currentTurnId"`

	CommunityCards []deck.Card `json:"communityCards"`
	DeckRemaining  int         `json:"deckRemaining"`
	BurnCount      int         `json:"burnCount"`

	YourCards []deck.Card `json:"yourCards"`

	HandInsight *advisor.Insight `json:"handInsight"`

	AvailableActions AvailableActionsData `json:"availableActions"`
	CanAct           bool                 `json:"canAct"`

	Players []PlayerStateData `json:"players"`
	Logs    []LogEntryData    `json:"logs"`

	LastShowdown *ShowdownData `json:"lastShowdown"`
}

// maxRenderedLogs bounds how many of the table's 40 retained log entries are
// sent to a client; clients only render the last ~28 (SPEC_FULL.md §4.7).
const maxRenderedLogs = 28

// stateDataFromView converts a table.View (plus the connection-layer
// joined/youId fields) into the wire StateData payload.
func stateDataFromView(v *table.View, joined bool, youID string) StateData {
	players := make([]PlayerStateData, len(v.Players))
	for i, p := range v.Players {
		players[i] = PlayerStateData{
			ID:                p.ID,
			Name:              p.Name,
			Chips:             p.Chips,
			IsAdmin:           p.IsAdmin,
			InHand:            p.InHand,
			Folded:            p.Folded,
			AllIn:             p.AllIn,
			BetThisRound:      p.BetThisRound,
			TotalContribution: p.TotalContribution,
		}
	}

	logs := v.Logs
	if len(logs) > maxRenderedLogs {
		logs = logs[len(logs)-maxRenderedLogs:]
	}
	logData := make([]LogEntryData, len(logs))
	for i, l := range logs {
		logData[i] = LogEntryData{Time: l.Time.Format("15:04:05"), Message: l.Message}
	}

	return StateData{
		Joined:         joined,
		YouID:          youID,
		GameStarted:    v.GameStarted,
		HandInProgress: v.HandInProgress,
		HandNumber:     v.HandNumber,
		Phase:          v.Phase,
		StartingStack:  v.StartingStack,
		SmallBlind:     v.SmallBlind,
		BigBlind:       v.BigBlind,
		Pot:            v.Pot,
		CurrentBet:     v.CurrentBet,
		DealerID:       v.DealerID,
		SmallBlindID:   v.SmallBlindID,
		BigBlindID:     v.BigBlindID,
		CurrentTurnID:  v.CurrentTurnID,
		CommunityCards: v.CommunityCards,
		DeckRemaining:  v.DeckRemaining,
		BurnCount:      v.BurnCount,
		YourCards:      v.YourCards,
		HandInsight:    v.HandInsight,
		AvailableActions: AvailableActionsData{
			CanFold:    v.AvailableActions.CanFold,
			CanCheck:   v.AvailableActions.CanCheck,
			CanCall:    v.AvailableActions.CanCall,
			CanRaise:   v.AvailableActions.CanRaise,
			CallAmount: v.AvailableActions.CallAmount,
			MinRaiseTo: v.AvailableActions.MinRaiseTo,
			MaxRaiseTo: v.AvailableActions.MaxRaiseTo,
		},
		CanAct:       v.CanAct,
		Players:      players,
		Logs:         logData,
		LastShowdown: showdownData(v.LastShowdown),
	}
}

func showdownData(s *table.ShowdownView) *ShowdownData {
	if s == nil {
		return nil
	}
	payouts := make([]PayoutData, len(s.Payouts))
	for i, p := range s.Payouts {
		payouts[i] = PayoutData{PlayerID: p.PlayerID, Amount: p.Amount}
	}
	return &ShowdownData{
		Board:        s.Board,
		Descriptions: s.Descriptions,
		Payouts:      payouts,
	}
}
