package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pkgconfig "sprint-tracker/pkg/config"
)

var (
	serverURL   string
	sessionPath string
	asJSON      bool
)

var rootCmd = &cobra.Command{
	Use:           "trackerctl",
	Short:         "Terminal client for sprint-tracker",
	Long:          `Browse sprints, issues, requirements and employees of a sprint-tracker server, and raise issues or comment on requirements from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", pkgconfig.GetEnv("TRACKER_SERVER", "http://localhost:8080"), "sprint-tracker server URL")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session-file", defaultSessionPath(), "where the signed-in session is kept")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON instead of tables")

	rootCmd.AddCommand(signinCmd)
	rootCmd.AddCommand(signoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(sprintsCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(employeesCmd)
	rootCmd.AddCommand(departmentsCmd)
	rootCmd.AddCommand(applicationsCmd)
	rootCmd.AddCommand(requirementsCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
