// clubcore is the HTTP backend for the club site: the public marketing
// pages and the admin back office share one resource API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CR-8/clubcore/pkg/version"
)

const (
	serviceName = "clubcore"
	envPrefix   = "CLUBCORE"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Club management backend",
	}

	var cfgPath string
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config-file", "c", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfgPath)
		},
	}
	rootCmd.AddCommand(serveCmd)
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Current(serviceName)
			fmt.Printf("Service:    %s\n", info.Service)
			fmt.Printf("Version:    %s\n", info.Version)
			fmt.Printf("Commit:     %s\n", info.Commit)
			fmt.Printf("Build Time: %s\n", info.BuildTime)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "config-validate",
		Short: "Validate configuration and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cfgPath); err != nil {
				return err
			}
			fmt.Println("configuration is valid")
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
