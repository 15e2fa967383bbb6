package prompt

import (
	"encoding/json"

	"ai-support-be/pkg/prompt/resolver"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformWeb      Platform = "web"
	PlatformWhatsApp Platform = "whatsapp"
	PlatformFacebook Platform = "facebook"
)

// CompanyPrompts is the company-authored part of the prompt.
type CompanyPrompts struct {
	PersonalityPrompt string
	ResponsePrompt    string          // legacy free-text override
	ResponseRules     json.RawMessage // rules.Selection JSON
}

// QuotedMessage is the earlier message an inbound message replies to.
type QuotedMessage struct {
	FromCustomer bool
	Content      string
}

// MessageData describes where the inbound message came from.
type MessageData struct {
	Platform    Platform
	Intent      Intent // inferred from the message when empty
	PostText    string // social post the conversation started from
	ProductHint string
	ReplyTo     *QuotedMessage
}

// Input is everything needed to build one prompt.
type Input struct {
	CompanyID uuid.UUID
	Message   string
	Company   *CompanyPrompts
	History   []resolver.ConversationTurn
	RAG       []resolver.RAGItem
	Customer  *resolver.CustomerData
	Meta      *MessageData
}
