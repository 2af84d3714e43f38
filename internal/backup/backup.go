// Package backup uploads snapshots of the bot's data files to object
// storage and prunes old snapshots past the retention limit.
//
// Snapshots land under craftd/<timestamp>/<filename>, one timestamp
// directory per run. The timestamp is UTC so ordering is stable across
// host timezone changes.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/craftd/craftd/internal/metrics"
)

// keyPrefix namespaces all snapshot objects in the bucket.
const keyPrefix = "craftd/"

// stampLayout names snapshot directories. Lexical order equals
// chronological order.
const stampLayout = "20060102T150405Z"

// ObjectStore is the subset of the S3 client the snapshotter needs.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Snapshotter uploads the configured files and enforces retention.
type Snapshotter struct {
	store  ObjectStore
	bucket string
	keep   int
	files  []string
	log    zerolog.Logger

	now func() time.Time
}

// New returns a Snapshotter uploading files to bucket, keeping the
// newest keep snapshots.
func New(store ObjectStore, bucket string, keep int, files []string, logger zerolog.Logger) *Snapshotter {
	return &Snapshotter{
		store:  store,
		bucket: bucket,
		keep:   keep,
		files:  files,
		log:    logger,
		now:    time.Now,
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Snapshotter) EnsureBucket(ctx context.Context) error {
	exists, err := s.store.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	s.log.Info().Str("bucket", s.bucket).Msg("creating snapshot bucket")
	return s.store.CreateBucket(ctx, s.bucket)
}

// Run takes one snapshot and prunes old ones, recording the outcome.
func (s *Snapshotter) Run(ctx context.Context) error {
	err := s.snapshot(ctx)
	if err == nil {
		err = s.prune(ctx)
	}
	metrics.RecordBackup(err == nil)
	return err
}

// snapshot uploads every existing data file under a fresh timestamp
// directory. Files that do not exist yet are skipped.
func (s *Snapshotter) snapshot(ctx context.Context) error {
	stamp := s.now().UTC().Format(stampLayout)
	uploaded := 0

	for _, file := range s.files {
		data, err := os.ReadFile(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.log.Debug().Str("file", file).Msg("skipping missing file")
				continue
			}
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		key := keyPrefix + stamp + "/" + filepath.Base(file)
		if err := s.store.PutObject(ctx, s.bucket, key, data); err != nil {
			return err
		}
		uploaded++
	}

	if uploaded == 0 {
		return fmt.Errorf("no data files to snapshot")
	}
	s.log.Info().Str("stamp", stamp).Int("files", uploaded).Msg("snapshot uploaded")
	return nil
}

// prune deletes every object belonging to a snapshot older than the
// keep newest ones.
func (s *Snapshotter) prune(ctx context.Context) error {
	keys, err := s.store.ListObjects(ctx, s.bucket, keyPrefix)
	if err != nil {
		return err
	}

	byStamp := make(map[string][]string)
	for _, key := range keys {
		rest := strings.TrimPrefix(key, keyPrefix)
		stamp, _, ok := strings.Cut(rest, "/")
		if !ok || stamp == "" {
			continue
		}
		byStamp[stamp] = append(byStamp[stamp], key)
	}
	if len(byStamp) <= s.keep {
		return nil
	}

	stamps := make([]string, 0, len(byStamp))
	for stamp := range byStamp {
		stamps = append(stamps, stamp)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(stamps)))

	for _, stamp := range stamps[s.keep:] {
		for _, key := range byStamp[stamp] {
			if err := s.store.DeleteObject(ctx, s.bucket, key); err != nil {
				return err
			}
		}
		s.log.Info().Str("stamp", stamp).Msg("pruned old snapshot")
	}
	return nil
}
