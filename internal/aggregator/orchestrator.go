package aggregator

import (
	"context"
	"errors"
	"time"

	"toolmux/internal/config"
	"toolmux/internal/health"
	"toolmux/internal/source"
	"toolmux/internal/telemetry"
	"toolmux/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// orchestrator runs discovery cycles: one concurrent ListTools fan-out over
// every enabled server, each call bounded by that server's timeout, the
// whole cycle bounded by the global timeout. Cycles are serialized and
// coalesced: a trigger arriving while one is in flight receives the
// in-flight cycle's result.
type orchestrator struct {
	globalTimeout time.Duration
	tracker       *health.Tracker
	obs           *telemetry.Observer
	group         singleflight.Group
}

func newOrchestrator(globalTimeout time.Duration, tracker *health.Tracker, obs *telemetry.Observer) *orchestrator {
	if globalTimeout <= 0 {
		globalTimeout = config.DefaultGlobalTimeout
	}
	return &orchestrator{
		globalTimeout: globalTimeout,
		tracker:       tracker,
		obs:           obs,
	}
}

// discover runs one coalesced discovery cycle. apply runs inside the
// flight, exactly once per actual cycle, before any caller observes the
// result; every caller, coalesced or not, receives the applied result.
func (o *orchestrator) discover(
	ctx context.Context,
	servers []config.SourceServer,
	clients map[string]source.Client,
	apply func(CycleResult) CycleResult,
) (CycleResult, error) {
	v, err, shared := o.group.Do("discover", func() (interface{}, error) {
		result := o.runCycle(ctx, servers, clients)
		if apply != nil {
			result = apply(result)
		}
		return result, nil
	})
	if err != nil {
		return CycleResult{}, err
	}
	if shared {
		logging.Debug("Discovery", "Trigger coalesced into in-flight cycle %s", v.(CycleResult).ID)
	}
	return v.(CycleResult), nil
}

func (o *orchestrator) runCycle(
	ctx context.Context,
	servers []config.SourceServer,
	clients map[string]source.Client,
) CycleResult {
	cycleID := uuid.NewString()
	started := time.Now()

	// The cycle must not die with the caller that happened to trigger it:
	// coalesced callers share this one run.
	cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.globalTimeout)
	defer cancel()

	logging.Debug("Discovery", "Cycle %s starting for %d servers", cycleID, len(servers))

	results := make(chan Outcome, len(servers))

	for _, server := range servers {
		client, ok := clients[server.Name]
		if !ok {
			// No client was built for this server (factory failure at
			// construction); record it as failed without a goroutine.
			results <- Outcome{
				Server: server.Name,
				Err:    &source.ConnectionError{Server: server.Name, Err: errors.New("no client configured")},
			}
			continue
		}

		go func(server config.SourceServer, client source.Client) {
			serverCtx, cancel := context.WithTimeout(cycleCtx, server.Timeout)
			defer cancel()

			start := time.Now()
			tools, err := client.ListTools(serverCtx)
			elapsed := time.Since(start)

			results <- Outcome{
				Server:  server.Name,
				Tools:   tools,
				Err:     err,
				Elapsed: elapsed,
			}
		}(server, client)
	}

	// Collect until every server reported or the global timeout fires.
	// Servers still pending at that point are recorded as failed for this
	// cycle; their goroutines unwind on their own once their contexts die.
	outcomes := make(map[string]Outcome, len(servers))
	pending := len(servers)

collect:
	for pending > 0 {
		select {
		case outcome := <-results:
			outcomes[outcome.Server] = outcome
			pending--
		case <-cycleCtx.Done():
			break collect
		}
	}

	for _, server := range servers {
		if _, ok := outcomes[server.Name]; !ok {
			outcomes[server.Name] = Outcome{
				Server:  server.Name,
				Err:     &source.DiscoveryError{Server: server.Name, Err: cycleCtx.Err()},
				Elapsed: time.Since(started),
			}
		}
	}

	// One health update per server per cycle.
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			o.tracker.RecordSuccess(outcome.Server)
			logging.Debug("Discovery", "Server %s listed %d tools in %s",
				outcome.Server, len(outcome.Tools), outcome.Elapsed)
		} else {
			o.tracker.RecordFailure(outcome.Server, outcome.Err)
			logging.Warn("Discovery", "Server %s failed discovery: %v", outcome.Server, outcome.Err)
		}
		o.obs.ObserveServerDiscovery(outcome.Server, outcome.Elapsed, outcome.Err)
	}

	result := CycleResult{
		ID:       cycleID,
		Started:  started,
		Elapsed:  time.Since(started),
		Outcomes: outcomes,
	}
	logging.Info("Discovery", "Cycle %s finished in %s (%d servers, %d failures)",
		cycleID, result.Elapsed, len(servers), result.Failures())
	return result
}
