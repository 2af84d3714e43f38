package minecraft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/craftd/craftd/internal/metrics"
	"github.com/craftd/craftd/internal/util/timefmt"
)

// ErrNoJoinRecord reports that a player never appears joining the game
// in any retained log file.
var ErrNoJoinRecord = errors.New("no join record in logs")

// LogSort selects the ordering of log file listings.
type LogSort string

const (
	// SortByName lists logs in lexical order.
	SortByName LogSort = "name"
	// SortByDate lists logs newest first.
	SortByDate LogSort = "date"
)

// Unbounded disables a search limit.
const Unbounded = -1

// Session is one player's most recent visit to the server.
type Session struct {
	Joined time.Time
	// Left is zero while StillPlaying.
	Left         time.Time
	StillPlaying bool
}

// Duration returns the session length, 0 while the player is online.
func (s Session) Duration() time.Duration {
	if s.StillPlaying {
		return 0
	}
	return s.Left.Sub(s.Joined)
}

// FlushLogCache drops all cached log data so the next read hits the
// server. Session lookups flush first to see just-written lines.
func (g *Gateway) FlushLogCache() {
	if g.cache != nil {
		g.cache.Clear()
	}
}

// ListLogFiles lists the server log files, skipping debug logs.
func (g *Gateway) ListLogFiles(ctx context.Context, sort LogSort) ([]string, error) {
	key := "log_files_" + string(sort)
	if g.cache != nil {
		files, ok := g.cache.Get(key)
		metrics.RecordLogCacheLookup(ok)
		if ok {
			return files, nil
		}
	}

	sortOption := ""
	if sort == SortByDate {
		sortOption = "-t "
	}
	command := fmt.Sprintf("ls %s%s/*.log* | grep -v debug", sortOption, g.logs)

	out, err := g.run(ctx, command)
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}

	if g.cache != nil {
		g.cache.Set(key, files)
	}
	return files, nil
}

// ReadLogFile fetches one log file and returns its lines. Compressed
// rotations are expanded on the server side.
func (g *Gateway) ReadLogFile(ctx context.Context, path string) ([]string, error) {
	if g.cache != nil {
		lines, ok := g.cache.Get(path)
		metrics.RecordLogCacheLookup(ok)
		if ok {
			return lines, nil
		}
	}

	command := "cat " + path
	if strings.HasSuffix(path, ".gz") {
		command = "zcat " + path
	}

	out, err := g.run(ctx, command)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file %s: %w", path, err)
	}

	lines := strings.Split(out, "\n")
	if g.cache != nil {
		g.cache.Set(path, lines)
	}
	return lines, nil
}

// SearchLogs scans the logs newest line first for lines containing
// needle. It stops after maxMatches matches or maxScanLines scanned
// lines (Unbounded disables either limit) and returns the matches with
// the number of lines scanned. The scan count lets a follow-up search be
// bounded to the same window.
func (g *Gateway) SearchLogs(ctx context.Context, needle string, maxMatches, maxScanLines int) ([]string, int, error) {
	files, err := g.ListLogFiles(ctx, SortByDate)
	if err != nil {
		return nil, 0, err
	}

	var matches []string
	scanned := 0
	done := func() bool {
		return (maxMatches != Unbounded && len(matches) >= maxMatches) ||
			(maxScanLines != Unbounded && scanned >= maxScanLines)
	}

	for _, file := range files {
		if done() {
			break
		}
		lines, err := g.ReadLogFile(ctx, file)
		if err != nil {
			return nil, 0, err
		}
		for i := len(lines) - 1; i >= 0; i-- {
			scanned++
			if strings.Contains(lines[i], needle) {
				matches = append(matches, lines[i])
			}
			if done() {
				break
			}
		}
	}
	return matches, scanned, nil
}

// LastSession finds the most recent join of username and the matching
// leave. The leave search never scans past the join line, so an earlier
// session's leave is never paired with the latest join. Returns
// ErrNoJoinRecord when the player never joined within the retained logs.
func (g *Gateway) LastSession(ctx context.Context, username string) (Session, error) {
	joined, joinedScan, err := g.SearchLogs(ctx, username+" joined the game", 1, Unbounded)
	if err != nil {
		return Session{}, fmt.Errorf("failed to search join record: %w", err)
	}
	if len(joined) == 0 {
		return Session{}, fmt.Errorf("%w for %s", ErrNoJoinRecord, username)
	}

	joinedAt, err := parseLineTime(joined[0])
	if err != nil {
		return Session{}, err
	}

	left, _, err := g.SearchLogs(ctx, username+" left the game", 1, joinedScan)
	if err != nil {
		return Session{}, fmt.Errorf("failed to search leave record: %w", err)
	}
	if len(left) == 0 {
		return Session{Joined: joinedAt, StillPlaying: true}, nil
	}

	leftAt, err := parseLineTime(left[0])
	if err != nil {
		return Session{}, err
	}
	return Session{Joined: joinedAt, Left: leftAt}, nil
}

// parseLineTime extracts and parses the bracketed timestamp opening a
// log line.
func parseLineTime(line string) (time.Time, error) {
	t, err := timefmt.ExtractLogTime(line)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse log timestamp: %w", err)
	}
	return t, nil
}
