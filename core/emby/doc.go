// Package emby is a minimal client for the Emby media server REST API.
//
// Requests carry the API key in the X-Emby-Token header and go through
// go-retryablehttp, so connection failures and 5xx answers are retried with
// backoff up to Config.RetryMax times. Failures fall in two categories:
//
//   - ErrUnreachable (test with errors.Is): the server could not be reached.
//   - *StatusError (test with errors.As): the server answered with a non-2xx status.
//
// # Usage
//
//	client := emby.NewClient(server.URL, server.APIKey, cfg.Emby, emby.WithLogger(log))
//	items, err := client.ListItems(ctx, emby.DefaultSyncQuery())
package emby
