package server

import (
	"encoding/json"
	"testing"

	"github.com/lox/holdem-table/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageRoundTrip(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MessageTypeJoin, JoinData{Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, MessageTypeJoin, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	var decoded JoinData
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, "Alice", decoded.Name)
}

func TestNewMessageNilData(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MessageTypeStartGame, nil)
	require.NoError(t, err)
	assert.Nil(t, msg.Data)
}

func TestStateDataFromViewTruncatesLogs(t *testing.T) {
	t.Parallel()

	v := &table.View{
		Phase: "lobby",
		Logs:  make([]table.LogEntry, 40),
	}
	for i := range v.Logs {
		v.Logs[i] = table.LogEntry{Message: "entry"}
	}

	data := stateDataFromView(v, true, "v1")
	assert.Len(t, data.Logs, maxRenderedLogs)
}

func TestStateDataFromViewCarriesJoinedAndYouID(t *testing.T) {
	t.Parallel()

	v := &table.View{Phase: "lobby"}
	data := stateDataFromView(v, true, "v42")
	assert.True(t, data.Joined)
	assert.Equal(t, "v42", data.YouID)
}

func TestShowdownDataNilWhenNoShowdown(t *testing.T) {
	t.Parallel()
	assert.Nil(t, showdownData(nil))
}

func TestShowdownDataConvertsPayouts(t *testing.T) {
	t.Parallel()

	sv := &table.ShowdownView{
		Board:        []string{"As", "Kd"},
		Descriptions: map[string]string{"v1": "Pair of Aces"},
		Payouts:      []table.Payout{{PlayerID: "v1", Amount: 40}},
	}
	data := showdownData(sv)
	require.NotNil(t, data)
	assert.Equal(t, []string{"As", "Kd"}, data.Board)
	require.Len(t, data.Payouts, 1)
	assert.Equal(t, "v1", data.Payouts[0].PlayerID)
	assert.Equal(t, 40, data.Payouts[0].Amount)
}
