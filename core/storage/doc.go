// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface, which supports
// both AWS S3 and self-hosted MinIO. The catalog feature archives sync
// reports through it and the integrity feature checks the bucket.
//
// # Client Interface
//
// Client covers only the calls this module makes. Tests use the testify mock in
// core/storage/mocks.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
