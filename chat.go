package main

import (
	"sort"
	"time"
)

// Chat senders.
const (
	SenderPlayer = "player"
	SenderAI     = "ai"
	SenderSystem = "system"
)

// ChatMessage is one append-only chat entry, ordered by timestamp.
type ChatMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// PostChat appends a message to the game's chat log.
func (g *GameSession) PostChat(sender, message string) {
	if message == "" {
		return
	}
	g.store.Append(g.chatPrefix(), ChatMessage{
		Sender:    sender,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
}

// ChatHistory returns all chat messages ordered by timestamp.
func (g *GameSession) ChatHistory() []ChatMessage {
	var out []ChatMessage
	for _, v := range g.store.List(g.chatPrefix() + "/") {
		if m, ok := v.(ChatMessage); ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// --- AI chat lines, keyed on the score gap ---

func aiLineOnPlayerSolve(playerScore, aiScore int) string {
	diff := playerScore - aiScore
	switch {
	case diff >= 20:
		return "Not bad, human. Enjoy it while it lasts."
	case diff <= -20:
		return "I'm cruising. Try to keep up!"
	default:
		return "Nice move. Your turn won't be this easy next time."
	}
}

func aiLineOnAISolve(playerScore, aiScore int) string {
	diff := aiScore - playerScore
	switch {
	case diff >= 20:
		return "Dominance established. Proceeding efficiently."
	case diff <= -20:
		return "Closing the gap. This isn't over."
	default:
		return "My algorithms like this trajectory."
	}
}

func aiLineOnGameStart() string {
	return "AlphaCross online. Let's make this interesting."
}

func aiLineOnGameOver(winner string) string {
	switch winner {
	case string(PartyAI):
		return "Victory: expected. Good game."
	case string(PartyPlayer):
		return "Impressive. I will recalibrate."
	default:
		return "A draw? Statistical anomaly."
	}
}
