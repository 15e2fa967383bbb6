package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-support-be/internal/pkg/logger"
	"ai-support-be/pkg/prompt/resolver"
	"ai-support-be/pkg/prompt/rules"
	"ai-support-be/pkg/prompt/template"
	"ai-support-be/pkg/sanitize"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// assembly is the per-call state of one Build.
type assembly struct {
	*Builder
	in        *Input
	companyId uuid.UUID
	company   *CompanyPrompts
	meta      *MessageData
	intent    Intent
}

type sectionFunc func(ctx context.Context) (string, error)

// run turns a failing or panicking section into an empty contribution.
func (a *assembly) run(ctx context.Context, name string, fn sectionFunc) (out string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error(logger.ModulePrompt, "Prompt section panicked", map[string]interface{}{
				"section": name,
				"company": a.companyId.String(),
				"panic":   fmt.Sprint(r),
			})
			out = ""
		}
	}()

	out, err := fn(ctx)
	if err != nil {
		a.logger.Warn(logger.ModulePrompt, "Prompt section omitted", map[string]interface{}{
			"section": name,
			"company": a.companyId.String(),
			"error":   err.Error(),
		})
		return ""
	}
	return out
}

func (a *assembly) resolve(ctx context.Context, key string, vars template.Vars) string {
	return a.templates.Resolve(ctx, &a.companyId, key, vars)
}

func (a *assembly) personality(ctx context.Context) (string, error) {
	text := strings.TrimSpace(a.company.PersonalityPrompt)
	// Company text with unfilled {{placeholders}} is an unfinished draft.
	if text == "" || len(template.Placeholders(text)) > 0 {
		text = a.resolve(ctx, template.KeyPersonalityDefault, nil)
	}

	var platformKey string
	switch a.meta.Platform {
	case PlatformWeb:
		platformKey = template.KeyPlatformWeb
	case PlatformWhatsApp:
		platformKey = template.KeyPlatformWhatsApp
	case PlatformFacebook:
		platformKey = template.KeyPlatformFacebook
	}
	if platformKey != "" {
		if note := a.resolve(ctx, platformKey, nil); note != "" {
			text = strings.TrimSpace(text + "\n\n" + note)
		}
	}
	return wrap(TagPersonality, text), nil
}

func (a *assembly) rules(_ context.Context) (string, error) {
	sel, err := rules.Parse(a.company.ResponseRules)
	if err != nil {
		a.logger.Warn(logger.ModulePrompt, "Invalid response rules, using defaults", map[string]interface{}{
			"company": a.companyId.String(),
			"error":   err.Error(),
		})
		sel = nil
	}
	return rules.Compile(sel), nil
}

func (a *assembly) postContext(ctx context.Context) (string, error) {
	if strings.TrimSpace(a.meta.PostText) == "" && strings.TrimSpace(a.meta.ProductHint) == "" {
		return "", nil
	}
	return wrap(TagPostContext, a.resolve(ctx, template.KeyPostContext, template.Vars{
		"postText":    a.meta.PostText,
		"productHint": a.meta.ProductHint,
	})), nil
}

func (a *assembly) mood(ctx context.Context) (string, error) {
	lines := make([]string, 0, 2)
	if mood := DetectMood(a.in.Message); mood != "" {
		lines = append(lines, a.resolve(ctx, template.KeyCustomerMood, template.Vars{"mood": mood}))
	}
	if a.intent == IntentComplaint {
		lines = append(lines, wrap(template.KeyFallbackHandoff, a.resolve(ctx, template.KeyFallbackHandoff, nil)))
	}
	return wrap(TagCustomerMood, strings.Join(lines, "\n")), nil
}

func (a *assembly) shipping(ctx context.Context) (string, error) {
	if a.Builder.shipping == nil {
		return "", nil
	}
	res, err := a.Builder.shipping.Resolve(ctx, a.in.Message, a.companyId, a.in.History)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", nil
	}

	available := strings.Join(res.AvailableGovernorates, "، ")
	var body string
	switch {
	case res.ShippingInfo != nil:
		body = a.resolve(ctx, template.KeyShippingResponse, template.Vars{
			"governorate":  res.ShippingInfo.Governorate,
			"price":        humanize.Commaf(res.ShippingInfo.Price),
			"deliveryTime": res.ShippingInfo.DeliveryTime,
		})
	case res.FoundGovernorate != "":
		body = a.resolve(ctx, template.KeyShippingNotFound, template.Vars{
			"governorate":           res.FoundGovernorate,
			"availableGovernorates": available,
		})
	case res.IsAsking:
		body = a.resolve(ctx, template.KeyShippingAsking, template.Vars{
			"question":              a.in.Message,
			"availableGovernorates": available,
		})
	}
	return wrap(TagShippingInfo, body), nil
}

func (a *assembly) responsePrompt(_ context.Context) (string, error) {
	return wrap(TagResponsePrompt, a.company.ResponsePrompt), nil
}

func (a *assembly) profile(ctx context.Context) (string, error) {
	p := resolver.ResolveProfile(a.in.Customer, a.in.History)
	customerType := "returning customer"
	if p.IsNewCustomer {
		customerType = "new customer"
	}
	return wrap(TagCustomerProfile, a.resolve(ctx, template.KeyCustomerProfile, template.Vars{
		"name":               p.Name,
		"phone":              p.Phone,
		"city":               p.City,
		"orderCount":         sanitize.Stringify(p.OrderCount),
		"customerType":       customerType,
		"conversationLength": sanitize.Stringify(p.ConversationLength),
		"stage":              string(p.Stage),
	})), nil
}

func (a *assembly) replyContext(ctx context.Context) (string, error) {
	quoted := a.meta.ReplyTo
	if quoted == nil || strings.TrimSpace(quoted.Content) == "" {
		return "", nil
	}
	return wrap(TagReplyContext, a.resolve(ctx, template.KeyReplyContext, template.Vars{
		"quotedSender":  senderLabel(quoted.FromCustomer),
		"quotedContent": quoted.Content,
	})), nil
}

func (a *assembly) history(ctx context.Context) (string, error) {
	res := resolver.ResolveHistory(a.in.History, a.historyLimit)
	if !res.HasHistory {
		return wrap(TagFirstInteraction, a.resolve(ctx, template.KeyFirstInteraction, nil)), nil
	}

	var sb strings.Builder
	sb.WriteString(a.resolve(ctx, template.KeyHistoryHeader, template.Vars{"count": sanitize.Stringify(len(res.Items))}))
	sb.WriteString("\n")
	if res.Truncated {
		sb.WriteString("(older messages omitted)\n")
	}
	now := a.now()
	for _, item := range res.Items {
		sb.WriteString(sanitize.Stringify(item.Index))
		sb.WriteString(". ")
		sb.WriteString(senderLabel(item.IsFromCustomer))
		if !item.CreatedAt.IsZero() {
			sb.WriteString(" (" + humanize.RelTime(item.CreatedAt, now, "ago", "from now") + ")")
		}
		sb.WriteString(": ")
		sb.WriteString(sanitize.Text(item.Content))
		sb.WriteString("\n")
	}
	sb.WriteString(a.resolve(ctx, template.KeyHistoryFooter, nil))
	return wrap(TagConversationHistory, sb.String()), nil
}

func (a *assembly) availableData(ctx context.Context) (string, error) {
	res := resolver.ResolveRAG(a.in.RAG)
	if !res.HasData {
		if !a.strictIntents[a.intent] {
			return "", nil
		}
		body := a.resolve(ctx, template.KeyNoProductsFound, template.Vars{"intent": string(a.intent)})
		if fallback := wrap(template.KeyFallbackNoData, a.resolve(ctx, template.KeyFallbackNoData, nil)); fallback != "" {
			body += "\n" + fallback
		}
		return wrap(TagNoDataAvailable, body), nil
	}

	items := res.Items
	lastMentioned := ""
	if res.HasProducts && a.matcher != nil {
		if pos, ok := a.matcher.LastMentioned(a.in.History, items); ok && pos >= 0 && pos < len(items) {
			lastMentioned = ProductName(items[pos])
			items = moveToFront(items, pos)
		}
	}

	var sb strings.Builder
	sb.WriteString(a.resolve(ctx, template.KeyRAGHeader, template.Vars{"count": sanitize.Stringify(len(items))}))
	sb.WriteString("\n")
	if lastMentioned != "" {
		sb.WriteString(a.resolve(ctx, template.KeyLastMentionedProduct, template.Vars{"productName": lastMentioned}))
		sb.WriteString("\n")
	}
	for _, item := range items {
		key, err := ragTemplateKey(item.Type)
		if err != nil {
			return "", err
		}
		sb.WriteString(a.resolve(ctx, key, template.Vars{
			"index":   sanitize.Stringify(item.Index),
			"content": item.Content,
		}))
		sb.WriteString("\n")
	}
	sb.WriteString(a.resolve(ctx, template.KeyRAGFooter, nil))
	return wrap(TagAvailableData, sb.String()), nil
}

func (a *assembly) criticalConstraints(ctx context.Context) string {
	body := a.run(ctx, TagCriticalConstraints, func(ctx context.Context) (string, error) {
		return a.resolve(ctx, template.KeyCriticalConstraints, nil), nil
	})
	if strings.TrimSpace(body) == "" {
		body, _ = template.Default(template.KeyCriticalConstraints)
	}
	return wrap(TagCriticalConstraints, body)
}

// moveToFront puts items[pos] first and renumbers from 1.
func moveToFront(items []resolver.RAGEntry, pos int) []resolver.RAGEntry {
	out := make([]resolver.RAGEntry, 0, len(items))
	out = append(out, items[pos])
	out = append(out, items[:pos]...)
	out = append(out, items[pos+1:]...)
	for i := range out {
		out[i].Index = i + 1
	}
	return out
}

func ragTemplateKey(t resolver.RAGType) (string, error) {
	switch t {
	case resolver.RAGTypeProduct:
		return template.KeyRAGProduct, nil
	case resolver.RAGTypeFAQ:
		return template.KeyRAGFAQ, nil
	case resolver.RAGTypePolicy:
		return template.KeyRAGPolicy, nil
	}
	return "", errors.New("unknown rag item type " + string(t))
}

func senderLabel(fromCustomer bool) string {
	if fromCustomer {
		return "Customer"
	}
	return "Assistant"
}
