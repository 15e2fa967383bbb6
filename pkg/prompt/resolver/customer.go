package resolver

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultHistoryCharLimit bounds the raw history text that reaches a prompt.
const DefaultHistoryCharLimit = 2000

// Placeholders rendered for missing customer fields.
const (
	NewCustomerPlaceholder = "عميل جديد"
	UnspecifiedPlaceholder = "غير محدد"
)

type Stage string

const (
	StageStarting Stage = "starting"
	StageEarly    Stage = "early"
	StageOngoing  Stage = "ongoing"
)

// ConversationTurn is one message of a conversation, in chronological order.
type ConversationTurn struct {
	IsFromCustomer bool
	Content        string
	CreatedAt      time.Time
}

// CustomerData is whatever the caller knows about the customer.
type CustomerData struct {
	Name       string
	Phone      string
	City       string
	OrderCount int
}

type CustomerProfile struct {
	Name               string
	Phone              string
	City               string
	OrderCount         int
	IsNewCustomer      bool
	ConversationLength int
	Stage              Stage
}

// ResolveProfile fills placeholders for unknown fields and derives the conversation stage.
func ResolveProfile(customer *CustomerData, history []ConversationTurn) CustomerProfile {
	if customer == nil {
		customer = &CustomerData{}
	}

	profile := CustomerProfile{
		Name:               orDefault(customer.Name, NewCustomerPlaceholder),
		Phone:              orDefault(customer.Phone, UnspecifiedPlaceholder),
		City:               orDefault(customer.City, UnspecifiedPlaceholder),
		OrderCount:         customer.OrderCount,
		IsNewCustomer:      customer.OrderCount <= 0,
		ConversationLength: len(history),
	}
	if profile.OrderCount < 0 {
		profile.OrderCount = 0
	}

	switch {
	case len(history) == 0:
		profile.Stage = StageStarting
	case len(history) < 3:
		profile.Stage = StageEarly
	default:
		profile.Stage = StageOngoing
	}
	return profile
}

type HistoryItem struct {
	Index          int // 1-based
	IsFromCustomer bool
	Content        string
	CreatedAt      time.Time
}

type HistoryResult struct {
	HasHistory bool
	Items      []HistoryItem
	Truncated  bool
}

// ResolveHistory keeps the most recent turns whose combined length fits limitChars.
// Length is counted in runes. Turns are returned oldest first.
func ResolveHistory(history []ConversationTurn, limitChars int) HistoryResult {
	if limitChars <= 0 {
		limitChars = DefaultHistoryCharLimit
	}
	result := HistoryResult{HasHistory: len(history) > 0}
	if len(history) == 0 {
		return result
	}

	cutoff := 0
	total := 0
	for i := len(history) - 1; i >= 0; i-- {
		total += utf8.RuneCountInString(history[i].Content)
		if total > limitChars {
			cutoff = i + 1
			break
		}
	}

	kept := history[cutoff:]
	result.Truncated = cutoff > 0
	result.Items = make([]HistoryItem, 0, len(kept))
	for i, turn := range kept {
		result.Items = append(result.Items, HistoryItem{
			Index:          i + 1,
			IsFromCustomer: turn.IsFromCustomer,
			Content:        turn.Content,
			CreatedAt:      turn.CreatedAt,
		})
	}
	return result
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
