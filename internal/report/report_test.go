package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeStringLeaf(t *testing.T) {
	n := FromError("players", "SSH command failed while reading usernames",
		errors.New("dial tcp: connection refused"))

	want := "players: \"SSH command failed while reading usernames\"\n" +
		"dial tcp: connection refused\n"
	assert.Equal(t, want, n.String())
}

func TestNodeStringNested(t *testing.T) {
	inner := FromError("list_log_files", "SSH command failed while listing log files",
		errors.New("exit status 2"))
	mid := New("search_logs", "failed to list log files").Add(inner)
	root := New("last_joined", "failed to get last joined time").Add(mid)

	want := "last_joined: \"failed to get last joined time\"\n" +
		"\tsearch_logs: \"failed to list log files\"\n" +
		"\t\tlist_log_files: \"SSH command failed while listing log files\"\n" +
		"\t\texit status 2\n"
	assert.Equal(t, want, root.String())
}

func TestNodeStringNoDetail(t *testing.T) {
	n := New("update_players", "failed to get players data")
	assert.Equal(t, "update_players: \"failed to get players data\"\n", n.String())
}

func TestFromErrorNilError(t *testing.T) {
	n := FromError("op", "msg", nil)
	assert.Empty(t, n.Detail)
}

func TestAddMultipleChildren(t *testing.T) {
	root := New("daily_update", "partial failure").Add(
		New("players", "fetch failed"),
		New("stats", "fetch failed"),
	)

	out := root.String()
	assert.Contains(t, out, "\tplayers: \"fetch failed\"\n")
	assert.Contains(t, out, "\tstats: \"fetch failed\"\n")
}
