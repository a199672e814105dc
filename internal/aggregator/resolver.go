package aggregator

import (
	"errors"
	"sort"

	"toolmux/internal/config"
	"toolmux/internal/translate"
	"toolmux/pkg/logging"
)

// resolve merges the cycle's per-server outcomes into one winning
// descriptor per canonical name.
//
// Only servers that succeeded this cycle and are not currently unavailable
// contribute candidates; each server's tool filter is applied before any
// name competes. Within a name group the lowest priority number wins, and
// configuration order breaks ties (servers is the enabled list in
// configuration order). Returns the winners, the conflict log, and the
// per-server count of tools dropped by schema translation.
func resolve(
	servers []config.SourceServer,
	outcomes map[string]Outcome,
	available func(server string) bool,
) ([]translate.ToolDescriptor, []ConflictEntry, map[string]int) {
	candidates := make(map[string][]translate.ToolDescriptor)
	var nameOrder []string
	dropped := make(map[string]int)

	for _, server := range servers {
		outcome, ok := outcomes[server.Name]
		if !ok || !outcome.Succeeded() {
			continue
		}
		if !available(server.Name) {
			logging.Debug("Resolver", "Server %s is unavailable, excluding its %d tools",
				server.Name, len(outcome.Tools))
			continue
		}

		for _, tool := range outcome.Tools {
			if !server.FilterAllows(tool.Name) {
				logging.Debug("Resolver", "Tool %s from %s filtered out", tool.Name, server.Name)
				continue
			}

			desc, err := translate.Tool(server.Name, server.Priority, tool)
			if err != nil {
				var schemaErr *translate.UnsupportedSchemaError
				if errors.As(err, &schemaErr) {
					logging.Warn("Resolver", "Dropping tool %s from %s: %s",
						tool.Name, server.Name, schemaErr.Reason)
				} else {
					logging.Warn("Resolver", "Dropping tool %s from %s: %v", tool.Name, server.Name, err)
				}
				dropped[server.Name]++
				continue
			}

			if _, seen := candidates[desc.Name]; !seen {
				nameOrder = append(nameOrder, desc.Name)
			}
			candidates[desc.Name] = append(candidates[desc.Name], desc)
		}
	}

	winners := make([]translate.ToolDescriptor, 0, len(nameOrder))
	var conflicts []ConflictEntry

	for _, name := range nameOrder {
		group := candidates[name]
		if len(group) == 1 {
			winners = append(winners, group[0])
			continue
		}

		winner, entry := pickWinner(name, group)
		winners = append(winners, winner)
		conflicts = append(conflicts, entry)
		logging.Info("Resolver", "Conflict on %q: %s wins over %v (%s)",
			name, entry.Winner, entry.Losers, entry.Reason)
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Name < conflicts[j].Name })
	return winners, conflicts, dropped
}

// pickWinner resolves one multi-candidate group. The group preserves
// configuration order, so the first candidate with the minimal priority is
// also the configuration-order tiebreak winner.
func pickWinner(name string, group []translate.ToolDescriptor) (translate.ToolDescriptor, ConflictEntry) {
	winner := group[0]
	for _, candidate := range group[1:] {
		if candidate.Priority < winner.Priority {
			winner = candidate
		}
	}

	reason := ReasonPriority
	losers := make([]string, 0, len(group)-1)
	for _, candidate := range group {
		if candidate.Server == winner.Server {
			continue
		}
		if candidate.Priority == winner.Priority {
			reason = ReasonConfigOrder
		}
		losers = append(losers, candidate.Server)
	}

	return winner, ConflictEntry{
		Name:   name,
		Winner: winner.Server,
		Losers: losers,
		Reason: reason,
	}
}
