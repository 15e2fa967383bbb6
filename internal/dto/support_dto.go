package dto

import "time"

type ReplyRequest struct {
	CompanyId      string             `json:"company_id" validate:"required,uuid"`
	ConversationId string             `json:"conversation_id"`
	Message        string             `json:"message" validate:"required,max=4000"`
	Platform       string             `json:"platform" validate:"omitempty,oneof=web whatsapp facebook"`
	Intent         string             `json:"intent" validate:"omitempty,oneof=greeting price_inquiry shipping_inquiry order_status product_inquiry complaint general"`
	PostText       string             `json:"post_text,omitempty"`
	ProductHint    string             `json:"product_hint,omitempty"`
	ReplyTo        *QuotedMessageDTO  `json:"reply_to,omitempty"`
	History        []ConversationTurn `json:"history,omitempty" validate:"max=200,dive"`
	RAG            []RAGItemDTO       `json:"rag,omitempty" validate:"max=50,dive"`
	Customer       *CustomerDTO       `json:"customer,omitempty"`
	ForceFresh     bool               `json:"force_fresh,omitempty"`
}

type QuotedMessageDTO struct {
	FromCustomer bool   `json:"from_customer"`
	Content      string `json:"content" validate:"required"`
}

type ConversationTurn struct {
	IsFromCustomer bool      `json:"is_from_customer"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type RAGItemDTO struct {
	Type     string                 `json:"type" validate:"required,oneof=product faq policy"`
	Content  string                 `json:"content" validate:"required"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type CustomerDTO struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	OrderCount int    `json:"order_count"`
}

type ReplyResponse struct {
	Reply            *string `json:"reply"`
	SilentReason     string  `json:"silent_reason,omitempty"`
	KeyUsed          string  `json:"key_used,omitempty"`
	ModelUsed        string  `json:"model_used,omitempty"`
	ProviderUsed     string  `json:"provider_used,omitempty"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	Attempts         int     `json:"attempts"`
	FromCache        bool    `json:"from_cache"`
	Intent           string  `json:"intent"`
}

// PreviewPromptResponse returns the assembled prompt without calling a model.
type PreviewPromptResponse struct {
	Prompt string `json:"prompt"`
	Intent string `json:"intent"`
}

// InteractionJob is the log_interaction payload as it comes off the queue.
type InteractionJob struct {
	CompanyId        string `json:"companyId"`
	ConversationId   string `json:"conversationId"`
	MessageType      string `json:"messageType"`
	KeyId            string `json:"keyId"`
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	Success          bool   `json:"success"`
	FromCache        bool   `json:"fromCache"`
	SilentReason     string `json:"silentReason"`
	Attempts         int    `json:"attempts"`
	ProcessingMs     int64  `json:"processingMs"`
	PromptChars      int    `json:"promptChars"`
	ResponseChars    int    `json:"responseChars"`
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
}
