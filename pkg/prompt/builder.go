package prompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-support-be/internal/pkg/logger"
	"ai-support-be/pkg/prompt/resolver"
	"ai-support-be/pkg/prompt/template"
	"ai-support-be/pkg/sanitize"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Section markers, in prompt order.
const (
	TagPersonality         = "personality"
	TagResponseRules       = "response_rules"
	TagPostContext         = "post_context"
	TagCustomerMood        = "customer_mood"
	TagShippingInfo        = "shipping_info"
	TagResponsePrompt      = "response_prompt"
	TagCustomerProfile     = "customer_profile"
	TagReplyContext        = "reply_context"
	TagConversationHistory = "conversation_history"
	TagFirstInteraction    = "first_interaction"
	TagAvailableData       = "available_data"
	TagNoDataAvailable     = "no_data_available"
	TagUserInputBoundary   = "user_input_boundary"
	TagCriticalConstraints = "critical_constraints"
)

// TemplateResolver resolves named fragments; see template.Store.
type TemplateResolver interface {
	Resolve(ctx context.Context, companyId *uuid.UUID, key string, vars template.Vars) string
}

// ShippingLookup resolves the shipping section data; see resolver.ShippingResolver.
type ShippingLookup interface {
	Resolve(ctx context.Context, message string, companyId uuid.UUID, history []resolver.ConversationTurn) (*resolver.ShippingResult, error)
}

type Config struct {
	HistoryCharLimit    int
	StrictNoDataIntents []Intent
}

type Option func(*Builder)

func WithProductMatcher(m ProductMatcher) Option {
	return func(b *Builder) { b.matcher = m }
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// Builder assembles the support prompt from templates, rules and resolved context.
type Builder struct {
	templates     TemplateResolver
	shipping      ShippingLookup
	matcher       ProductMatcher
	logger        logger.ILogger
	tracer        trace.Tracer
	now           func() time.Time
	historyLimit  int
	strictIntents map[Intent]bool
}

func NewBuilder(templates TemplateResolver, shipping ShippingLookup, log logger.ILogger, cfg Config, opts ...Option) *Builder {
	if log == nil {
		log = logger.NewNopLogger()
	}
	strict := cfg.StrictNoDataIntents
	if strict == nil {
		strict = DefaultStrictNoDataIntents
	}
	b := &Builder{
		templates:     templates,
		shipping:      shipping,
		matcher:       NewNameMatcher(),
		logger:        log,
		tracer:        otel.Tracer("ai-support-be/prompt"),
		now:           time.Now,
		historyLimit:  cfg.HistoryCharLimit,
		strictIntents: make(map[Intent]bool, len(strict)),
	}
	for _, i := range strict {
		b.strictIntents[i] = true
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build never fails. A failing section is logged and left out; if assembly
// itself panics, a minimal prompt is returned instead.
func (b *Builder) Build(ctx context.Context, in *Input) (out string) {
	ctx, span := b.tracer.Start(ctx, "prompt.Build")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(logger.ModulePrompt, "Prompt assembly panicked, using minimal prompt", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			message := ""
			if in != nil {
				message = in.Message
			}
			out = MinimalPrompt(message)
		}
	}()

	a := &assembly{Builder: b, in: in, companyId: in.CompanyID, company: in.Company}
	if a.company == nil {
		a.company = &CompanyPrompts{}
	}
	a.meta = in.Meta
	if a.meta == nil {
		a.meta = &MessageData{}
	}
	a.intent = a.meta.Intent
	if a.intent == "" {
		a.intent = InferIntent(in.Message)
	}
	span.SetAttributes(
		attribute.String("company.id", in.CompanyID.String()),
		attribute.String("message.intent", string(a.intent)),
	)

	var personality, shipping, profile, history string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		personality = a.run(gctx, TagPersonality, a.personality)
		return nil
	})
	g.Go(func() error {
		shipping = a.run(gctx, TagShippingInfo, a.shipping)
		return nil
	})
	g.Go(func() error {
		profile = a.run(gctx, TagCustomerProfile, a.profile)
		return nil
	})
	g.Go(func() error {
		history = a.run(gctx, TagConversationHistory, a.history)
		return nil
	})

	rulesBlock := a.run(ctx, TagResponseRules, a.rules)
	post := a.run(ctx, TagPostContext, a.postContext)
	mood := a.run(ctx, TagCustomerMood, a.mood)
	responsePrompt := a.run(ctx, TagResponsePrompt, a.responsePrompt)
	reply := a.run(ctx, TagReplyContext, a.replyContext)

	_ = g.Wait()

	// Product continuity reads the conversation, so data goes after history.
	data := a.run(ctx, TagAvailableData, a.availableData)

	parts := []string{
		personality,
		rulesBlock,
		post,
		mood,
		shipping,
		responsePrompt,
		profile,
		reply,
		history,
		data,
		userInputBoundary(in.Message),
		a.criticalConstraints(ctx),
	}

	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p)
	}
	return sb.String()
}

// MinimalPrompt is the prompt used when assembly cannot complete. It needs no I/O.
func MinimalPrompt(message string) string {
	personality, _ := template.Default(template.KeyPersonalityDefault)
	constraints, _ := template.Default(template.KeyCriticalConstraints)
	return strings.Join([]string{
		wrap(TagPersonality, personality),
		userInputBoundary(message),
		wrap(TagCriticalConstraints, constraints),
	}, "\n\n")
}

func userInputBoundary(message string) string {
	return "<" + TagUserInputBoundary + ">\n" + sanitize.Text(message) + "\n</" + TagUserInputBoundary + ">"
}

func wrap(tag, body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	return "<" + tag + ">\n" + body + "\n</" + tag + ">"
}
