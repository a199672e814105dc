package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"toolmux/internal/config"
	"toolmux/internal/health"
	"toolmux/internal/source"
	"toolmux/internal/telemetry"
	"toolmux/internal/translate"
	"toolmux/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/robfig/cron/v3"
)

// Engine is the multi-source tool aggregation engine. It owns one client
// and one execution limiter per configured server, the health tracker, the
// discovery orchestrator and the snapshot registry, and exposes the four
// operations the consumer-facing layers build on: DiscoverAll, Tools,
// Dispatch and Status.
type Engine struct {
	mu       sync.RWMutex
	servers  []config.SourceServer // enabled servers, configuration order
	configs  map[string]config.SourceServer
	clients  map[string]source.Client
	limiters map[string]*source.Limiter

	tracker  *health.Tracker
	registry *Registry
	orch     *orchestrator
	obs      *telemetry.Observer

	schedule string
	cron     *cron.Cron
	stopOnce sync.Once
}

// NewEngine builds an engine from the loaded configuration. obs may be nil.
//
// A configuration without a single enabled server is rejected with
// ErrNoEnabledServers: that is a startup condition, not a cycle failure.
func NewEngine(cfg config.Config, obs *telemetry.Observer) (*Engine, error) {
	enabled := cfg.EnabledServers()
	if len(enabled) == 0 {
		return nil, ErrNoEnabledServers
	}

	tracker := health.NewTracker(cfg.Health.FailureThreshold)
	e := &Engine{
		servers:  enabled,
		configs:  make(map[string]config.SourceServer, len(enabled)),
		clients:  make(map[string]source.Client, len(enabled)),
		limiters: make(map[string]*source.Limiter, len(enabled)),
		tracker:  tracker,
		registry: NewRegistry(),
		orch:     newOrchestrator(cfg.Discovery.GlobalTimeout, tracker, obs),
		obs:      obs,
		schedule: cfg.Discovery.Schedule,
	}

	for _, server := range enabled {
		client, err := source.NewClient(server)
		if err != nil {
			return nil, fmt.Errorf("building client for server %q: %w", server.Name, err)
		}
		e.configs[server.Name] = server
		e.clients[server.Name] = client
		e.limiters[server.Name] = source.NewLimiter(server.Name, server.MaxInFlight, server.Overflow)
	}

	return e, nil
}

// Registry returns the snapshot registry, for subscribers that react to
// swaps.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Start connects every client concurrently (connection failures are
// tolerated and recorded in health), runs the initial discovery cycle and
// starts the cron schedule if one is configured.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.RLock()
	clients := make(map[string]source.Client, len(e.clients))
	for name, client := range e.clients {
		clients[name] = client
	}
	e.mu.RUnlock()

	var wg sync.WaitGroup
	for name, client := range clients {
		wg.Add(1)
		go func(name string, client source.Client) {
			defer wg.Done()
			if err := client.Initialize(ctx); err != nil {
				// The discovery cycle will record the failure; here we
				// only log so one dead server never delays the others.
				logging.Warn("Aggregator", "Server %s failed to connect: %v", name, err)
			}
		}(name, client)
	}
	wg.Wait()

	if _, err := e.DiscoverAll(ctx); err != nil {
		return fmt.Errorf("initial discovery cycle: %w", err)
	}

	if e.schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(e.schedule, func() {
			if _, err := e.DiscoverAll(context.Background()); err != nil {
				logging.Error("Aggregator", err, "Scheduled discovery cycle failed")
			}
		})
		if err != nil {
			return fmt.Errorf("invalid discovery schedule %q: %w", e.schedule, err)
		}
		c.Start()
		e.mu.Lock()
		e.cron = c
		e.mu.Unlock()
		logging.Info("Aggregator", "Scheduled re-discovery with cron expression %q", e.schedule)
	}

	return nil
}

// Stop halts the schedule and closes every client exactly once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		c := e.cron
		e.cron = nil
		clients := e.clients
		e.mu.Unlock()

		if c != nil {
			c.Stop()
		}
		for name, client := range clients {
			if err := client.Close(); err != nil {
				logging.Warn("Aggregator", "Error closing client for %s: %v", name, err)
			}
		}
		logging.Info("Aggregator", "Engine stopped")
	})
}

// DiscoverAll triggers one discovery cycle and swaps the resulting snapshot
// into the registry. Concurrent triggers coalesce into the in-flight cycle.
func (e *Engine) DiscoverAll(ctx context.Context) (CycleResult, error) {
	e.mu.RLock()
	servers := e.servers
	clients := make(map[string]source.Client, len(e.clients))
	for name, client := range e.clients {
		clients[name] = client
	}
	e.mu.RUnlock()

	result, err := e.orch.discover(ctx, servers, clients, func(result CycleResult) CycleResult {
		winners, conflicts, dropped := resolve(servers, result.Outcomes, e.tracker.IsAvailable)

		for server, n := range dropped {
			outcome := result.Outcomes[server]
			outcome.Dropped = n
			result.Outcomes[server] = outcome
		}

		set := newToolSet(result.ID, winners, conflicts)
		e.registry.Swap(set)

		result.ToolCount = set.Len()
		result.Conflicts = conflicts

		e.obs.ObserveCycle(result.ID, result.Elapsed, len(servers), result.Failures(), set.Len())
		logging.Info("Aggregator", "Snapshot %s installed: %d tools, %d conflicts",
			result.ID, set.Len(), len(conflicts))
		return result
	})
	if err != nil {
		return CycleResult{}, err
	}
	return result, nil
}

// Tools returns the current snapshot's canonical descriptors, ascending by
// name. Never blocks on an in-progress cycle.
func (e *Engine) Tools() []translate.ToolDescriptor {
	return e.registry.Tools()
}

// Dispatch routes one tool call to the winning server of the current
// snapshot.
//
// Lookup misses fail with *ToolNotFoundError. Health is checked at call
// time: a winning server currently marked unavailable fails with
// *UnavailableServerError even though its descriptor is still in the
// snapshot. Provider-reported tool failures return both the provider's
// result and an *ExecutionError with Kind ExecutionTool, so callers can
// pass the original error payload through verbatim.
func (e *Engine) Dispatch(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	started := time.Now()

	desc, ok := e.registry.Current().Lookup(name)
	if !ok {
		e.obs.ObserveDispatch(name, "", time.Since(started), "not_found")
		return nil, &ToolNotFoundError{Tool: name}
	}

	if !e.tracker.IsAvailable(desc.Server) {
		e.obs.ObserveDispatch(name, desc.Server, time.Since(started), "unavailable")
		return nil, &UnavailableServerError{Server: desc.Server, Tool: name}
	}

	e.mu.RLock()
	client := e.clients[desc.Server]
	limiter := e.limiters[desc.Server]
	timeout := e.configs[desc.Server].Timeout
	e.mu.RUnlock()

	if client == nil || limiter == nil {
		// The snapshot can briefly outlive a reload that removed the
		// server; treat it like a stale descriptor.
		e.obs.ObserveDispatch(name, desc.Server, time.Since(started), "unavailable")
		return nil, &UnavailableServerError{Server: desc.Server, Tool: name}
	}

	if err := limiter.Acquire(ctx); err != nil {
		e.obs.ObserveDispatch(name, desc.Server, time.Since(started), "backpressure")
		return nil, err
	}
	defer limiter.Release()

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := client.CallTool(callCtx, desc.Native.Name, args)
	if err != nil {
		e.obs.ObserveDispatch(name, desc.Server, time.Since(started), string(source.ExecutionTransport))
		return nil, err
	}

	if result.IsError {
		e.obs.ObserveDispatch(name, desc.Server, time.Since(started), string(source.ExecutionTool))
		return result, &source.ExecutionError{
			Server: desc.Server,
			Tool:   name,
			Kind:   source.ExecutionTool,
			Err:    errors.New(resultErrorText(result)),
		}
	}

	e.obs.ObserveDispatch(name, desc.Server, time.Since(started), "")
	return result, nil
}

// Status returns the per-server view in configuration order.
func (e *Engine) Status() []ServerStatus {
	e.mu.RLock()
	servers := e.servers
	e.mu.RUnlock()

	toolCounts := make(map[string]int)
	for _, desc := range e.registry.Tools() {
		toolCounts[desc.Server]++
	}

	statuses := make([]ServerStatus, 0, len(servers))
	for _, server := range servers {
		status := ServerStatus{
			Server:    server.Name,
			Enabled:   server.IsEnabled(),
			State:     health.StateUnknown,
			ToolCount: toolCounts[server.Name],
		}
		if rec, ok := e.tracker.Get(server.Name); ok {
			status.State = rec.State
			status.ConsecutiveFailures = rec.ConsecutiveFailures
			status.LastSuccess = rec.LastSuccess
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Health returns the health tracker's current records.
func (e *Engine) Health() []health.ServerHealth {
	return e.tracker.Snapshot()
}

// Reload swaps in a new configuration: clients for removed servers are
// closed, clients for added servers are created and connected, and changed
// tunables take effect on the next cycle. The registry read path is never
// blocked; the running snapshot stays valid until the next cycle.
func (e *Engine) Reload(ctx context.Context, cfg config.Config) error {
	enabled := cfg.EnabledServers()
	if len(enabled) == 0 {
		return ErrNoEnabledServers
	}

	newConfigs := make(map[string]config.SourceServer, len(enabled))
	for _, server := range enabled {
		newConfigs[server.Name] = server
	}

	e.mu.Lock()
	// Close clients whose server disappeared or changed shape.
	for name, client := range e.clients {
		if _, keep := newConfigs[name]; keep && e.configs[name].Transport == newConfigs[name].Transport &&
			e.configs[name].Command == newConfigs[name].Command && e.configs[name].URL == newConfigs[name].URL {
			continue
		}
		if err := client.Close(); err != nil {
			logging.Warn("Aggregator", "Error closing client for %s during reload: %v", name, err)
		}
		delete(e.clients, name)
	}
	for name := range e.limiters {
		if _, keep := newConfigs[name]; !keep {
			delete(e.limiters, name)
		}
	}

	for _, server := range enabled {
		if _, ok := e.clients[server.Name]; !ok {
			client, err := source.NewClient(server)
			if err != nil {
				e.mu.Unlock()
				return fmt.Errorf("building client for server %q: %w", server.Name, err)
			}
			e.clients[server.Name] = client
		}
		e.limiters[server.Name] = source.NewLimiter(server.Name, server.MaxInFlight, server.Overflow)
	}

	e.servers = enabled
	e.configs = newConfigs
	clients := make(map[string]source.Client, len(e.clients))
	for name, client := range e.clients {
		clients[name] = client
	}
	e.mu.Unlock()

	for name, client := range clients {
		if err := client.Initialize(ctx); err != nil {
			logging.Warn("Aggregator", "Server %s failed to connect after reload: %v", name, err)
		}
	}

	logging.Info("Aggregator", "Configuration reloaded: %d enabled servers", len(enabled))
	if _, err := e.DiscoverAll(ctx); err != nil {
		return err
	}
	return nil
}

// resultErrorText flattens a provider error result into one message.
func resultErrorText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			return text.Text
		}
	}
	return "tool reported an error"
}
