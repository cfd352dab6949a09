package checks

import (
	"context"

	"emby-tagger/core/emby"
)

// RemoteReport describes the reachability of the active server.
type RemoteReport struct {
	ServerID  uint             `json:"server_id"`
	Name      string           `json:"name"`
	URL       string           `json:"url"`
	Reachable bool             `json:"reachable"`
	Info      *emby.SystemInfo `json:"info,omitempty"`
	// IDMatches is false when the server answers with a different id than
	// the one stored when it was added.
	IDMatches bool   `json:"id_matches"`
	Error     string `json:"error,omitempty"`
}

// Probe fetches the identity of a server.
type Probe func(ctx context.Context) (*emby.SystemInfo, error)

// CheckRemote calls the server and compares its id with the stored one.
func CheckRemote(ctx context.Context, serverID uint, name, url, storedID string, probe Probe) *RemoteReport {
	report := &RemoteReport{ServerID: serverID, Name: name, URL: url}

	info, err := probe(ctx)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Reachable = true
	report.Info = info
	report.IDMatches = storedID == "" || storedID == info.ID
	return report
}
