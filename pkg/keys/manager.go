package keys

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-support-be/internal/entity"
	"ai-support-be/internal/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	// ErrNoKeysConfigured means the company has no key that could ever serve a request.
	ErrNoKeysConfigured = errors.New("no usable API keys configured")
	// ErrNoKeyAvailable means keys exist but none can be used right now; retry shortly.
	ErrNoKeyAvailable = errors.New("no API key available right now")
)

// AllKeysUnavailableError is returned when every usable key is cooling down.
type AllKeysUnavailableError struct {
	RetryAfter time.Duration
}

func (e *AllKeysUnavailableError) Error() string {
	return fmt.Sprintf("all API keys unavailable, retry after %s", e.RetryAfter)
}

// KeyConfig is the key and model selected for one attempt.
type KeyConfig struct {
	KeyID    uuid.UUID
	Provider string
	Model    string
	Secret   string
}

type Repository interface {
	FindUsableKeys(ctx context.Context, companyId uuid.UUID) ([]*entity.AiApiKey, error)
	MarkInvalid(ctx context.Context, id uuid.UUID, reason string) error
}

type Config struct {
	DefaultProvider   string
	DefaultModel      string
	RefreshInterval   time.Duration // how long a company's key list is trusted
	RequestsPerMinute int           // pacing for keys that set none; 0 disables
}

type companyKeys struct {
	keys     []*entity.AiApiKey
	loadedAt time.Time
	cursor   int
}

// Manager rotates API keys per company and tracks their health in memory.
type Manager struct {
	repo   Repository
	logger logger.ILogger
	cfg    Config
	now    func() time.Time

	mu             sync.Mutex
	companies      map[uuid.UUID]*companyKeys
	cooldowns      map[uuid.UUID]time.Time
	invalid        map[uuid.UUID]string
	disabledModels map[string]string
	limiters       map[uuid.UUID]*rate.Limiter
}

func NewManager(repo Repository, log logger.ILogger, cfg Config, now func() time.Time) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Minute
	}
	return &Manager{
		repo:           repo,
		logger:         log,
		cfg:            cfg,
		now:            now,
		companies:      make(map[uuid.UUID]*companyKeys),
		cooldowns:      make(map[uuid.UUID]time.Time),
		invalid:        make(map[uuid.UUID]string),
		disabledModels: make(map[string]string),
		limiters:       make(map[uuid.UUID]*rate.Limiter),
	}
}

// GetNextKey picks the next healthy key for the company, round-robin.
func (m *Manager) GetNextKey(ctx context.Context, companyId uuid.UUID) (*KeyConfig, error) {
	ck, err := m.load(ctx, companyId)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := len(ck.keys)
	if n == 0 {
		return nil, ErrNoKeysConfigured
	}

	var (
		usable       int
		paced        int
		soonestReady time.Duration
	)
	for i := 0; i < n; i++ {
		idx := (ck.cursor + i) % n
		key := ck.keys[idx]
		if _, bad := m.invalid[key.Id]; bad {
			continue
		}
		model := m.pickModel(key)
		if model == "" {
			continue
		}
		usable++

		if until, cooling := m.cooldowns[key.Id]; cooling {
			if now.Before(until) {
				if wait := until.Sub(now); soonestReady == 0 || wait < soonestReady {
					soonestReady = wait
				}
				continue
			}
			delete(m.cooldowns, key.Id)
		}

		if limiter := m.limiter(key); limiter != nil && !limiter.AllowN(now, 1) {
			paced++
			continue
		}

		ck.cursor = (idx + 1) % n
		provider := key.Provider
		if provider == "" {
			provider = m.cfg.DefaultProvider
		}
		return &KeyConfig{
			KeyID:    key.Id,
			Provider: provider,
			Model:    model,
			Secret:   key.Secret,
		}, nil
	}

	switch {
	case usable == 0:
		return nil, ErrNoKeysConfigured
	case paced > 0:
		return nil, ErrNoKeyAvailable
	default:
		return nil, &AllKeysUnavailableError{RetryAfter: soonestReady}
	}
}

// MarkKeyFailed puts a key on cooldown.
func (m *Manager) MarkKeyFailed(keyId uuid.UUID, reason string, cooldown time.Duration) {
	m.mu.Lock()
	until := m.now().Add(cooldown)
	if current, ok := m.cooldowns[keyId]; !ok || until.After(current) {
		m.cooldowns[keyId] = until
	}
	m.mu.Unlock()

	m.logger.Warn(logger.ModuleKeys, "API key cooling down", map[string]interface{}{
		"key_id":   keyId.String(),
		"reason":   reason,
		"cooldown": cooldown.String(),
	})
}

// InvalidateKey removes a key from rotation for good and persists the decision.
func (m *Manager) InvalidateKey(ctx context.Context, keyId uuid.UUID, reason string) {
	m.mu.Lock()
	m.invalid[keyId] = reason
	delete(m.cooldowns, keyId)
	m.mu.Unlock()

	m.logger.Error(logger.ModuleKeys, "API key invalidated", map[string]interface{}{
		"key_id": keyId.String(),
		"reason": reason,
	})
	if err := m.repo.MarkInvalid(ctx, keyId, reason); err != nil {
		m.logger.Error(logger.ModuleKeys, "Failed to persist key invalidation", map[string]interface{}{
			"key_id": keyId.String(),
			"error":  err.Error(),
		})
	}
}

// DisableModel stops offering a model on any key for the rest of the process lifetime.
func (m *Manager) DisableModel(model, reason string) {
	m.mu.Lock()
	m.disabledModels[model] = reason
	m.mu.Unlock()

	m.logger.Error(logger.ModuleKeys, "Model disabled", map[string]interface{}{
		"model":  model,
		"reason": reason,
	})
}

// TotalKeys counts the company's configured keys, healthy or not. Lookup failures count as zero.
func (m *Manager) TotalKeys(ctx context.Context, companyId uuid.UUID) int {
	ck, err := m.load(ctx, companyId)
	if err != nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(ck.keys)
}

func (m *Manager) load(ctx context.Context, companyId uuid.UUID) (*companyKeys, error) {
	m.mu.Lock()
	ck, ok := m.companies[companyId]
	fresh := ok && m.now().Sub(ck.loadedAt) < m.cfg.RefreshInterval
	m.mu.Unlock()
	if fresh {
		return ck, nil
	}

	keys, err := m.repo.FindUsableKeys(ctx, companyId)
	if err != nil {
		if ok {
			m.logger.Warn(logger.ModuleKeys, "Key refresh failed, keeping previous list", map[string]interface{}{
				"company": companyId.String(),
				"error":   err.Error(),
			})
			return ck, nil
		}
		return nil, fmt.Errorf("load api keys: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		ck.keys = keys
		ck.loadedAt = m.now()
		if ck.cursor >= len(keys) {
			ck.cursor = 0
		}
		return ck, nil
	}
	ck = &companyKeys{keys: keys, loadedAt: m.now()}
	m.companies[companyId] = ck
	return ck, nil
}

// pickModel returns the first enabled model of key. Caller holds mu.
func (m *Manager) pickModel(key *entity.AiApiKey) string {
	models := key.Models
	if len(models) == 0 && m.cfg.DefaultModel != "" {
		models = []string{m.cfg.DefaultModel}
	}
	for _, model := range models {
		if _, off := m.disabledModels[model]; !off {
			return model
		}
	}
	return ""
}

// limiter returns the pacing limiter of key, or nil when unpaced. Caller holds mu.
func (m *Manager) limiter(key *entity.AiApiKey) *rate.Limiter {
	rpm := key.RequestsPerMinute
	if rpm <= 0 {
		rpm = m.cfg.RequestsPerMinute
	}
	if rpm <= 0 {
		return nil
	}
	l, ok := m.limiters[key.Id]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
		m.limiters[key.Id] = l
	}
	return l
}
