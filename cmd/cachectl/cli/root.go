// Package cli implements cachectl, the operator tool for the content source and the
// API cache.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
	"github.com/DavidPARK0417/draiger-sub002/config"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

var flagType string

var rootCmd = &cobra.Command{
	Use:           "cachectl",
	Short:         "Inspect the content source and invalidate API caches",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.InitApp()
		logger.Init(config.EnvLogLevel, "warn")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagType, "type", "", "content type (posts|recipes); empty means all")
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(invalidateCmd)
}

// Execute runs the root command and prints a styled error on failure.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), errorStyle.Render("error: "+err.Error()))
	}
	return err
}

// contentTypes resolves --type into the list of types to act on.
func contentTypes(raw string) ([]models.ContentType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.ContentTypes, nil
	}
	ct, ok := models.ParseContentType(raw)
	if !ok {
		return nil, fmt.Errorf("unknown content type %q (want posts or recipes)", raw)
	}
	return []models.ContentType{ct}, nil
}

func printLine(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), value)
}
