package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"emby-tagger/core/storage"

	"github.com/minio/minio-go/v7"
)

// ReportArchive stores sync reports in object storage under
// {prefix}/server-{id}/{timestamp}.json.
type ReportArchive struct {
	client storage.Client
	bucket string
	prefix string
	retain int
}

// NewReportArchive creates an archive from the storage configuration.
func NewReportArchive(client storage.Client, cfg storage.Config) *ReportArchive {
	return &ReportArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		retain: cfg.Retain,
	}
}

// Bucket returns the bucket reports are written to.
func (a *ReportArchive) Bucket() string {
	return a.bucket
}

func (a *ReportArchive) serverPrefix(serverID uint) string {
	dir := fmt.Sprintf("server-%d", serverID)
	if a.prefix == "" {
		return dir + "/"
	}
	return path.Join(a.prefix, dir) + "/"
}

// Save uploads a report, prunes the oldest reports beyond the retention
// count and returns the object name.
func (a *ReportArchive) Save(ctx context.Context, report *SyncReport) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode sync report: %w", err)
	}

	key := a.serverPrefix(report.ServerID) + report.StartedAt.UTC().Format("20060102T150405.000000000Z") + ".json"
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload sync report: %w", err)
	}

	if err := a.prune(ctx, report.ServerID); err != nil {
		return key, err
	}
	return key, nil
}

// List returns the object names of a server's reports, oldest first.
func (a *ReportArchive) List(ctx context.Context, serverID uint) ([]string, error) {
	var keys []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    a.serverPrefix(serverID),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list sync reports: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Load downloads and decodes one report.
func (a *ReportArchive) Load(ctx context.Context, key string) (*SyncReport, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get sync report %s: %w", key, err)
	}
	defer obj.Close()

	var report SyncReport
	if err := json.NewDecoder(obj).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode sync report %s: %w", key, err)
	}
	return &report, nil
}

// Latest returns the newest report of a server, or nil if there is none.
func (a *ReportArchive) Latest(ctx context.Context, serverID uint) (*SyncReport, error) {
	keys, err := a.List(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return a.Load(ctx, keys[len(keys)-1])
}

func (a *ReportArchive) prune(ctx context.Context, serverID uint) error {
	if a.retain <= 0 {
		return nil
	}

	keys, err := a.List(ctx, serverID)
	if err != nil {
		return err
	}
	for len(keys) > a.retain {
		if err := a.client.RemoveObject(ctx, a.bucket, keys[0], minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove sync report %s: %w", keys[0], err)
		}
		keys = keys[1:]
	}
	return nil
}
