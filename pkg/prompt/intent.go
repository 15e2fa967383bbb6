package prompt

import (
	"strings"
	"unicode/utf8"

	"ai-support-be/pkg/prompt/resolver"
)

type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentPriceInquiry    Intent = "price_inquiry"
	IntentShippingInquiry Intent = "shipping_inquiry"
	IntentOrderStatus     Intent = "order_status"
	IntentProductInquiry  Intent = "product_inquiry"
	IntentComplaint       Intent = "complaint"
	IntentGeneral         Intent = "general"
)

// DefaultStrictNoDataIntents need product data; without it the prompt forbids inventing any.
var DefaultStrictNoDataIntents = []Intent{
	IntentPriceInquiry,
	IntentShippingInquiry,
	IntentOrderStatus,
	IntentProductInquiry,
}

// Keyword sets are matched after normalization: Arabic keywords at word starts
// so attached suffixes still match, Latin keywords as whole words.
var (
	complaintKeywords = normalizeAll(
		"مشكله", "مشكلة", "شكوى", "زعلان", "زعلانه", "وحش", "سيء", "اتاخر", "متاخر", "مش راضي",
		"استرجاع", "ترجيع", "بايظ", "complaint", "problem", "terrible", "refund", "broken", "damaged",
	)
	orderStatusKeywords = normalizeAll(
		"طلبي", "اوردري", "الاوردر بتاعي", "رقم الطلب", "حالة الطلب", "الطلب فين", "فين الطلب",
		"فين الاوردر", "my order", "order status", "tracking", "track my",
	)
	priceKeywords = normalizeAll(
		"بكام", "السعر", "سعر", "سعره", "تمن", "تمنه", "الاسعار", "price", "prices", "how much", "cost", "costs",
	)
	productKeywords = normalizeAll(
		"عايز", "عاوز", "عايزه", "متاح", "متوفر", "موجود", "مقاس", "مقاسات", "لون", "الوان", "منتج",
		"available", "size", "sizes", "color", "colors", "colour", "do you have", "in stock",
	)
	greetingKeywords = normalizeAll(
		"السلام عليكم", "سلام", "اهلا", "مرحبا", "هاي", "صباح الخير", "مساء الخير",
		"hi", "hello", "hey", "good morning", "good evening",
	)
)

// InferIntent classifies a message with keyword rules. Complaints and order
// questions win over product questions; a greeting only wins when nothing else matched.
func InferIntent(message string) Intent {
	text := padded(message)
	switch {
	case text == "  ":
		return IntentGeneral
	case matchesAny(text, complaintKeywords):
		return IntentComplaint
	case matchesAny(text, orderStatusKeywords):
		return IntentOrderStatus
	case resolver.IsAskingAboutShipping(message):
		return IntentShippingInquiry
	case matchesAny(text, priceKeywords):
		return IntentPriceInquiry
	case matchesAny(text, productKeywords):
		return IntentProductInquiry
	case matchesAny(text, greetingKeywords):
		return IntentGreeting
	default:
		return IntentGeneral
	}
}

func normalizeAll(words ...string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := resolver.NormalizeArabic(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func padded(message string) string {
	return " " + resolver.NormalizeArabic(message) + " "
}

// matchesAny reports whether one of the keywords occurs in text.
// text must come from padded.
func matchesAny(text string, keywords []string) bool {
	for _, k := range keywords {
		needle := " " + k
		if isLatin(k) {
			needle += " "
		}
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func isLatin(s string) bool {
	for _, r := range s {
		if r >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
