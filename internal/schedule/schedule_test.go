package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftd/craftd/internal/minecraft"
	"github.com/craftd/craftd/internal/store"
)

type scriptedRunner struct {
	responses map[string]string
	errs      map[string]error
}

func (r *scriptedRunner) Run(_ context.Context, command string) (string, error) {
	if err, ok := r.errs[command]; ok {
		return "", err
	}
	out, ok := r.responses[command]
	if !ok {
		return "", errors.New("unexpected command: " + command)
	}
	return out, nil
}

const rosterJSON = `{"11111111-aaaa-bbbb-cccc-000000000001": "steve", "11111111-aaaa-bbbb-cccc-000000000002": "alex"}`

func newDailyUpdateFixture(t *testing.T, runner *scriptedRunner) (JobFunc, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(dir)
	gw := minecraft.New(runner, minecraft.Options{
		ScriptsPath: "/opt/minecraft/scripts",
		LogsPath:    "/opt/minecraft/logs",
		Logger:      zerolog.Nop(),
	})
	return DailyUpdate(gw, st), st, dir
}

func TestDailyUpdateWritesPlayerData(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]string{
		"cat minecraft_server/usernamecache.json": rosterJSON,
		"cat minecraft_server/world/stats/11111111-aaaa-bbbb-cccc-000000000001.json minecraft_server/world/stats/11111111-aaaa-bbbb-cccc-000000000002.json": `{"stats":{"minecraft:custom":{"minecraft:play_time":7200}}}` +
			`{"stats":{"minecraft:custom":{"minecraft:play_time":90}}}`,
	}}
	job, st, _ := newDailyUpdateFixture(t, runner)

	require.NoError(t, job(context.Background()))

	data, err := st.LoadPlayers()
	require.NoError(t, err)
	assert.NotEmpty(t, data.LastUpdated)
	require.Len(t, data.Players, 2)
	assert.Equal(t, store.Player{Username: "steve", Playtime: 360}, data.Players["11111111-aaaa-bbbb-cccc-000000000001"])
	assert.Equal(t, store.Player{Username: "alex", Playtime: 4}, data.Players["11111111-aaaa-bbbb-cccc-000000000002"])
}

func TestDailyUpdateFileShape(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]string{
		"cat minecraft_server/usernamecache.json": `{"11111111-aaaa-bbbb-cccc-000000000001": "steve"}`,
		"cat minecraft_server/world/stats/11111111-aaaa-bbbb-cccc-000000000001.json": `{"stats":{"minecraft:custom":{"minecraft:play_time":200}}}`,
	}}
	job, st, _ := newDailyUpdateFixture(t, runner)

	require.NoError(t, job(context.Background()))

	raw, err := os.ReadFile(st.PlayersPath())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "last_updated")
	assert.Contains(t, decoded, "players")
}

func TestDailyUpdateMergesExistingData(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]string{
		"cat minecraft_server/usernamecache.json": rosterJSON,
		"cat minecraft_server/world/stats/11111111-aaaa-bbbb-cccc-000000000001.json minecraft_server/world/stats/11111111-aaaa-bbbb-cccc-000000000002.json": `{"stats":{"minecraft:custom":{"minecraft:play_time":7200}}}` +
			`{"stats":{"minecraft:custom":{"minecraft:play_time":90}}}`,
	}}
	job, st, dir := newDailyUpdateFixture(t, runner)

	// An existing file with an unmodeled field and a player who has
	// since left the roster.
	content := `{
		"last_updated": "2024-01-01 00:00:00",
		"players": {
			"11111111-aaaa-bbbb-cccc-000000000001": {"username": "steve", "playtime": 1, "first_seen": "2023-11-02"},
			"99999999-gone-gone-gone-000000000000": {"username": "herobrine", "playtime": 5}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "players.json"), []byte(content), 0o644))

	require.NoError(t, job(context.Background()))

	data, err := st.LoadPlayers()
	require.NoError(t, err)
	require.Len(t, data.Players, 2)

	steve := data.Players["11111111-aaaa-bbbb-cccc-000000000001"]
	assert.EqualValues(t, 360, steve.Playtime, "playtime refreshed")
	assert.JSONEq(t, `"2023-11-02"`, string(steve.Extra["first_seen"]), "unmodeled field survives")
	assert.NotContains(t, data.Players, "99999999-gone-gone-gone-000000000000", "departed players are dropped")
}

func TestDailyUpdateMissingStatsKeepZeroPlaytime(t *testing.T) {
	// Only one stats object comes back for two players; the second
	// player is still listed, with no playtime recorded.
	runner := &scriptedRunner{responses: map[string]string{
		"cat minecraft_server/usernamecache.json": rosterJSON,
		"cat minecraft_server/world/stats/11111111-aaaa-bbbb-cccc-000000000001.json minecraft_server/world/stats/11111111-aaaa-bbbb-cccc-000000000002.json": `{"stats":{"minecraft:custom":{"minecraft:play_time":7200}}}`,
	}}
	job, st, _ := newDailyUpdateFixture(t, runner)

	require.NoError(t, job(context.Background()))

	data, err := st.LoadPlayers()
	require.NoError(t, err)
	require.Len(t, data.Players, 2)
	assert.EqualValues(t, 360, data.Players["11111111-aaaa-bbbb-cccc-000000000001"].Playtime)
	assert.EqualValues(t, 0, data.Players["11111111-aaaa-bbbb-cccc-000000000002"].Playtime)
}

func TestDailyUpdateRosterError(t *testing.T) {
	runner := &scriptedRunner{errs: map[string]error{
		"cat minecraft_server/usernamecache.json": errors.New("connection refused"),
	}}
	job, _, _ := newDailyUpdateFixture(t, runner)

	err := job(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch player roster")
}

func TestDailyUpdateStatsError(t *testing.T) {
	runner := &scriptedRunner{
		responses: map[string]string{
			"cat minecraft_server/usernamecache.json": rosterJSON,
		},
		errs: map[string]error{
			"cat minecraft_server/world/stats/11111111-aaaa-bbbb-cccc-000000000001.json minecraft_server/world/stats/11111111-aaaa-bbbb-cccc-000000000002.json": errors.New("exit status 1"),
		},
	}
	job, _, _ := newDailyUpdateFixture(t, runner)

	err := job(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch player stats")
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	s := New(context.Background(), zerolog.Nop())
	err := s.Add("not a cron spec", "daily_update", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule daily_update")
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := New(context.Background(), zerolog.Nop())
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("@every 10ms", "tick", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))

	s.Start()
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}

	done := s.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not drain")
	}
}

func TestSchedulerSurvivesFailingJob(t *testing.T) {
	s := New(context.Background(), zerolog.Nop())
	var runs int
	ranTwice := make(chan struct{})
	require.NoError(t, s.Add("@every 10ms", "flaky", func(context.Context) error {
		runs++
		if runs == 2 {
			close(ranTwice)
		}
		return errors.New("boom")
	}))

	s.Start()
	defer s.Stop()
	select {
	case <-ranTwice:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run again after failing")
	}
}
