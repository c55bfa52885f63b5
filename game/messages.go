package game

import (
	"encoding/json"

	"github.com/Orbasker/Whist/domain"
)

// Phase is the stage a game session is in between commits.
type Phase string

const (
	PhaseBidding Phase = "bidding"
	PhaseTricks  Phase = "tricks"
)

// clientMessage is the envelope every inbound websocket message uses. The
// payload shape depends on Type; anything that does not parse is dropped.
type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type submitBidsPayload struct {
	Bids      []int   `json:"bids"`
	TrumpSuit *string `json:"trump_suit"`
}

type submitTricksPayload struct {
	Tricks    []int   `json:"tricks"`
	Bids      []int   `json:"bids"`
	TrumpSuit *string `json:"trump_suit"`
}

type bidSelectionPayload struct {
	PlayerIndex *int `json:"player_index"`
	Bid         *int `json:"bid"`
}

type trickSelectionPayload struct {
	PlayerIndex *int `json:"player_index"`
	Trick       *int `json:"trick"`
}

type trumpSelectionPayload struct {
	TrumpSuit *string `json:"trump_suit"`
}

// Outbound message constructors. Marshalling these structs cannot fail, so
// each returns ready-to-send bytes.

func gameUpdateMsg(g domain.Game) []byte {
	return mustMarshal(struct {
		Type string      `json:"type"`
		Game domain.Game `json:"game"`
	}{"game_update", g})
}

func phaseUpdateMsg(phase Phase) []byte {
	return mustMarshal(struct {
		Type  string `json:"type"`
		Phase Phase  `json:"phase"`
	}{"phase_update", phase})
}

func bidSelectionMsg(seat, bid int) []byte {
	return mustMarshal(struct {
		Type string `json:"type"`
		Data struct {
			PlayerIndex int `json:"player_index"`
			Bid         int `json:"bid"`
		} `json:"data"`
	}{Type: "bid_selection", Data: struct {
		PlayerIndex int `json:"player_index"`
		Bid         int `json:"bid"`
	}{seat, bid}})
}

func trickSelectionMsg(seat, trick int) []byte {
	return mustMarshal(struct {
		Type string `json:"type"`
		Data struct {
			PlayerIndex int `json:"player_index"`
			Trick       int `json:"trick"`
		} `json:"data"`
	}{Type: "trick_selection", Data: struct {
		PlayerIndex int `json:"player_index"`
		Trick       int `json:"trick"`
	}{seat, trick}})
}

func trumpSelectionMsg(suit string) []byte {
	return mustMarshal(struct {
		Type string `json:"type"`
		Data struct {
			TrumpSuit string `json:"trump_suit"`
		} `json:"data"`
	}{Type: "trump_selection", Data: struct {
		TrumpSuit string `json:"trump_suit"`
	}{suit}})
}

func bidsSubmittedMsg(g domain.Game) []byte {
	return mustMarshal(struct {
		Type string      `json:"type"`
		Game domain.Game `json:"game"`
	}{"bids_submitted", g})
}

func tricksSubmittedMsg(g domain.Game, r domain.Round) []byte {
	return mustMarshal(struct {
		Type  string       `json:"type"`
		Game  domain.Game  `json:"game"`
		Round domain.Round `json:"round"`
	}{"tricks_submitted", g, r})
}

func errorMsg(message string) []byte {
	return mustMarshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{"error", message})
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
