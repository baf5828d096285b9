package bot

import (
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/pkg/httpserver"
)

// Registry owns every currently-active Instance, keyed by bot id, under
// a single reader-biased lock (spec.md §5 "shared read-only reference
// data... accessed through... reader-writer locks biased toward
// readers"). Shaped after internal/state.Store's map-plus-mutex layout.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*Instance
	logger    *zap.Logger
}

// NewRegistry creates an empty bot registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		instances: make(map[string]*Instance),
		logger:    logger,
	}
}

// Add registers a newly started bot instance.
func (r *Registry) Add(in *Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[in.Bot.ID] = in
	ActiveBots.Set(float64(len(r.instances)))
	if r.logger != nil {
		r.logger.Info("bot-registered", zap.String("bot_id", in.Bot.ID), zap.String("strategy", string(in.Strategy)))
	}
}

// Get returns the instance for botID, if any.
func (r *Registry) Get(botID string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.instances[botID]
	return in, ok
}

// Remove deregisters a bot, e.g. once its runtime has stopped and
// resting orders are cancelled.
func (r *Registry) Remove(botID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, botID)
	ActiveBots.Set(float64(len(r.instances)))
	if r.logger != nil {
		r.logger.Info("bot-deregistered", zap.String("bot_id", botID))
	}
}

// All returns a snapshot slice of every currently registered instance,
// safe to range over without holding the registry lock.
func (r *Registry) All() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Instance, 0, len(r.instances))
	for _, in := range r.instances {
		out = append(out, in)
	}
	return out
}

// Len returns the number of currently registered bots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Statuses implements httpserver.BotStatusProvider, giving the ambient
// HTTP surface a read-only view of every running bot.
func (r *Registry) Statuses() []httpserver.BotStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]httpserver.BotStatus, 0, len(r.instances))
	for _, in := range r.instances {
		in.Lock()
		out = append(out, httpserver.BotStatus{
			ID:       in.Bot.ID,
			MarketID: in.Bot.MarketID,
			Strategy: string(in.Strategy),
			Mode:     string(in.Bot.Mode),
			Settled:  in.Settled,
			Cash:     in.Book.Cash,
			YesSize:  in.Book.Yes.Size,
			NoSize:   in.Book.No.Size,
		})
		in.Unlock()
	}
	return out
}
