package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-support-be/pkg/llm"
)

// Action is what the loop does with the key/model after a failed call.
type Action int

const (
	// ActionFatal stops the loop. Retrying the same request cannot help.
	ActionFatal Action = iota
	// ActionRotate cools the key down and moves to the next one.
	ActionRotate
	// ActionInvalidateKey removes the key for good.
	ActionInvalidateKey
	// ActionDisableModel removes the model for good.
	ActionDisableModel
	// ActionRetry tries again without touching key health.
	ActionRetry
)

func (a Action) String() string {
	switch a {
	case ActionRotate:
		return "rotate"
	case ActionInvalidateKey:
		return "invalidate_key"
	case ActionDisableModel:
		return "disable_model"
	case ActionRetry:
		return "retry"
	default:
		return "fatal"
	}
}

type Decision struct {
	Action    Action
	Cooldown  time.Duration // only for ActionRotate
	Permanent bool
	Reason    string
}

var (
	rateLimitPatterns  = []string{"resource_exhausted", "quota", "rate limit", "too many requests"}
	unavailablePattern = []string{"unavailable", "overloaded"}
	badKeyPatterns     = []string{"leaked", "api key not valid", "invalid api key", "incorrect api key", "permission_denied", "permission denied"}
	notFoundPatterns   = []string{"not found", "not_found", "does not exist"}
	serverPatterns     = []string{"internal", "deadline exceeded", "timeout", "connection reset"}
)

// Classify maps a provider failure onto a loop transition. fallbackCooldown is used
// for rate limits that carry no retry-after hint.
func Classify(err error, fallbackCooldown time.Duration) Decision {
	if err == nil {
		return Decision{Action: ActionRetry}
	}
	if errors.Is(err, context.Canceled) {
		return Decision{Action: ActionFatal, Reason: "canceled"}
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) && perr.StatusCode != 0 {
		return classifyStatus(perr.StatusCode, perr.RetryAfter, fallbackCooldown, perr.Error())
	}

	msg := strings.ToLower(err.Error())
	var retryAfter time.Duration
	if perr != nil {
		retryAfter = perr.RetryAfter
	}
	switch {
	case containsAny(msg, rateLimitPatterns) || strings.Contains(msg, "429"):
		return classifyStatus(http.StatusTooManyRequests, retryAfter, fallbackCooldown, err.Error())
	case containsAny(msg, badKeyPatterns) || strings.Contains(msg, "403"):
		return classifyStatus(http.StatusForbidden, 0, 0, err.Error())
	case containsAny(msg, unavailablePattern) || strings.Contains(msg, "503"):
		return classifyStatus(http.StatusServiceUnavailable, retryAfter, fallbackCooldown, err.Error())
	case strings.Contains(msg, "model") && (containsAny(msg, notFoundPatterns) || strings.Contains(msg, "404")):
		return classifyStatus(http.StatusNotFound, 0, 0, err.Error())
	case containsAny(msg, serverPatterns) || errors.Is(err, context.DeadlineExceeded):
		return classifyStatus(http.StatusInternalServerError, 0, 0, err.Error())
	}
	return Decision{Action: ActionFatal, Reason: err.Error()}
}

func classifyStatus(code int, retryAfter, fallbackCooldown time.Duration, reason string) Decision {
	switch {
	case code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable:
		cooldown := retryAfter
		if cooldown <= 0 {
			cooldown = fallbackCooldown
		}
		return Decision{Action: ActionRotate, Cooldown: cooldown, Reason: fmt.Sprintf("%d: %s", code, reason)}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return Decision{Action: ActionInvalidateKey, Permanent: true, Reason: fmt.Sprintf("%d: %s", code, reason)}
	case code == http.StatusNotFound:
		return Decision{Action: ActionDisableModel, Permanent: true, Reason: fmt.Sprintf("%d: %s", code, reason)}
	case code >= http.StatusInternalServerError:
		return Decision{Action: ActionRetry, Reason: fmt.Sprintf("%d: %s", code, reason)}
	}
	return Decision{Action: ActionFatal, Reason: fmt.Sprintf("%d: %s", code, reason)}
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
