package cli

import (
	"encoding/hex"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/sensorframe/internal/db"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	DBPath   string
	SensorID string
	Limit    int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored frames, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database path")
	cmd.Flags().StringVar(&opts.SensorID, "sensor", "", "only list frames from this sensor")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum frames to list")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	store, err := db.NewDB(opts.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListFrames(cmd.Context(), opts.SensorID, opts.Limit)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		if records == nil {
			records = []db.FrameRecord{}
		}
		return writeJSON(cmd.OutOrStdout(), records)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSENSOR\tCREATED\tSLOTS\tPRESENT\tBYTES\tPRESENCE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\n",
			r.ID, r.SensorID, r.CreatedAt.Format(time.RFC3339), r.IntSlots, r.FloatSlots,
			r.PresentCount, len(r.Encoded), hex.EncodeToString(r.Presence))
	}
	return tw.Flush()
}
