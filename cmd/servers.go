package cmd

import (
	"fmt"
	"strconv"

	"emby-tagger/core/metrics"
	"emby-tagger/feature/catalog/models"
	"emby-tagger/feature/servers"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverInactive bool
	serversJSON    bool
)

// serversCmd is the parent command for remote server management.
var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Manage remote Emby servers",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(metrics.Nop{}, true)
		if err != nil {
			return err
		}

		list, err := a.servers.List(cmd.Context())
		if err != nil {
			return err
		}
		if serversJSON {
			return writeJSON(cmd, list)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderServers(list))
		return nil
	},
}

var serversAddCmd = &cobra.Command{
	Use:   "add <name> <url> <api-key>",
	Short: "Add a server after testing the connection",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(metrics.Nop{}, true)
		if err != nil {
			return err
		}

		active := !serverInactive
		server, err := a.servers.Create(cmd.Context(), servers.CreateInput{
			Name:     args[0],
			URL:      args[1],
			APIKey:   args[2],
			IsActive: &active,
		})
		if err != nil {
			return err
		}
		a.logger.Info("Server added", zap.Uint("id", server.ID), zap.Bool("active", server.IsActive))
		return nil
	},
}

var serversActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Make a server the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseServerID(args[0])
		if err != nil {
			return err
		}
		a, err := bootstrap(metrics.Nop{}, true)
		if err != nil {
			return err
		}

		server, err := a.servers.Activate(cmd.Context(), id)
		if err != nil {
			return err
		}
		a.logger.Info("Server activated", zap.Uint("id", server.ID), zap.String("name", server.Name))
		return nil
	},
}

var serversRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a server and its mirror",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseServerID(args[0])
		if err != nil {
			return err
		}
		a, err := bootstrap(metrics.Nop{}, true)
		if err != nil {
			return err
		}

		if err := a.servers.Delete(cmd.Context(), id); err != nil {
			return err
		}
		a.logger.Info("Server removed", zap.Uint("id", id))
		return nil
	},
}

var serversTestCmd = &cobra.Command{
	Use:   "test <url> <api-key>",
	Short: "Test a URL and API key without saving them",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(metrics.Nop{}, true)
		if err != nil {
			return err
		}

		info, err := a.servers.Test(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return writeJSON(cmd, info)
	},
}

func init() {
	serversListCmd.Flags().BoolVar(&serversJSON, "json", false, "Print the servers as JSON")
	serversAddCmd.Flags().BoolVar(&serverInactive, "inactive", false, "Add without activating")

	serversCmd.AddCommand(serversListCmd, serversAddCmd, serversActivateCmd, serversRemoveCmd, serversTestCmd)
	RootCmd.AddCommand(serversCmd)
}

func parseServerID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid server id %q", arg)
	}
	return uint(id), nil
}

// renderServers lists servers with the active one marked.
func renderServers(list []models.RemoteServer) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		active := ""
		if s.IsActive {
			active = "*"
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(s.ID), 10),
			active,
			s.Name,
			s.URL,
			s.RemoteID,
		})
	}
	return renderTable(
		[]string{"ID", "Active", "Name", "URL", "Server ID"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}
