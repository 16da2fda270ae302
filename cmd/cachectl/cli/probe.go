package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/clients/notionclient"
	"github.com/DavidPARK0417/draiger-sub002/config"
)

var flagProbeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Query the content source directly and report counts or the missing setting",
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().DurationVar(&flagProbeTimeout, "timeout", 30*time.Second, "overall timeout")
}

func runProbe(cmd *cobra.Command, args []string) error {
	types, err := contentTypes(flagType)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), flagProbeTimeout)
	defer cancel()

	cfg := config.GetConfig()
	client := notionclient.NewFromConfig(cfg)
	out := cmd.OutOrStdout()

	failed := 0
	for _, ct := range types {
		fmt.Fprintln(out, headerStyle.Render(string(ct)))
		start := time.Now()
		items, err := client.FetchAll(ctx, notionclient.Filter{ContentType: ct})
		if err != nil {
			failed++
			var missing *notionclient.MissingConfigError
			if errors.As(err, &missing) {
				printLine(out, "missing", errorStyle.Render(missing.Key))
			} else {
				printLine(out, "error", errorStyle.Render(err.Error()))
			}
			continue
		}
		printLine(out, "published", okStyle.Render(strconv.Itoa(len(items))))
		printLine(out, "elapsed", time.Since(start).Round(time.Millisecond).String())
		if len(items) > 0 {
			printLine(out, "newest", fmt.Sprintf("%s (%s)", items[0].Title, items[0].Date.Format("2006-01-02")))
		}
		for _, category := range cfg.CategoriesFor(string(ct)) {
			n, err := client.Count(ctx, notionclient.Filter{ContentType: ct, Category: category})
			if err != nil {
				printLine(out, category, errorStyle.Render(err.Error()))
				continue
			}
			printLine(out, category, strconv.Itoa(n))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d content types failed", failed, len(types))
	}
	return nil
}
