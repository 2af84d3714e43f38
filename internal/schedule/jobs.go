package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/craftd/craftd/internal/minecraft"
	"github.com/craftd/craftd/internal/store"
)

// DailyUpdate returns the job that refreshes the local player cache
// from the server: the current roster plus each player's accumulated
// playtime. Existing entries are updated in place so fields the bot
// does not model survive the refresh; players no longer in the roster
// are dropped. Players without a stats file keep a zero playtime.
func DailyUpdate(gw *minecraft.Gateway, st *store.Store) JobFunc {
	return func(ctx context.Context) error {
		data, err := st.LoadPlayers()
		if err != nil {
			return fmt.Errorf("failed to load player data: %w", err)
		}

		gw.FlushLogCache()

		roster, err := gw.Players(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch player roster: %w", err)
		}

		uuids := make([]string, len(roster))
		for i, p := range roster {
			uuids[i] = p.UUID
		}
		stats, err := gw.PlayerStats(ctx, uuids)
		if err != nil {
			return fmt.Errorf("failed to fetch player stats: %w", err)
		}

		previous := data.Players
		data.Players = make(map[string]store.Player, len(roster))
		for _, p := range roster {
			entry := previous[p.UUID]
			entry.Username = p.Username
			entry.Playtime = stats[p.UUID].PlaytimeSeconds()
			data.Players[p.UUID] = entry
		}
		if err := st.SavePlayers(data, time.Now()); err != nil {
			return fmt.Errorf("failed to persist player data: %w", err)
		}
		return nil
	}
}
