package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/sensorframe/internal/config"
	"github.com/banshee-data/sensorframe/internal/db"
	"github.com/banshee-data/sensorframe/internal/frame"
	"github.com/banshee-data/sensorframe/internal/ingest"
	"github.com/banshee-data/sensorframe/internal/serialsink"
	"github.com/banshee-data/sensorframe/internal/wire"
)

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	ConfigPath   string
	ReadingsPath string
	DBPath       string
	SerialPath   string
	Port         serialsink.PortOptions
	Workers      int
}

// EncodedFrame is one line of encode output.
type EncodedFrame struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Present int    `json:"present"`
	Size    int    `json:"size"`
	Hex     string `json:"hex"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode readings into sparse frames",
		Long: `Resolve the frame schema from a slot configuration, build one frame per
entry of the readings document and print each encoded frame as hex.

With --db the frames are also stored; with --serial they are written to a
serial device as FRAME lines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultConfigPath, "slot configuration file (.json, .yaml)")
	cmd.Flags().StringVarP(&opts.ReadingsPath, "readings", "r", "", "readings document (.yaml or .json)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "store frames in this SQLite database")
	cmd.Flags().StringVar(&opts.SerialPath, "serial", "", "send frames to this serial device")
	cmd.Flags().IntVar(&opts.Port.BaudRate, "baud", serialsink.DefaultBaudRate, "serial baud rate")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent frame builds (0 = GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("readings")

	return cmd
}

func loadSchema(path string) (*config.SlotConfig, frame.Schema, error) {
	cfg, err := config.LoadSlotConfig(path)
	if err != nil {
		return nil, frame.Schema{}, err
	}
	schema, err := cfg.Schema()
	if err != nil {
		return nil, frame.Schema{}, err
	}
	return cfg, schema, nil
}

func buildFrames(cmd *cobra.Command, configPath, readingsPath string, workers int) (*config.SlotConfig, frame.Schema, []*frame.Frame, error) {
	cfg, schema, err := loadSchema(configPath)
	if err != nil {
		return nil, frame.Schema{}, nil, err
	}
	doc, err := ingest.LoadReadings(readingsPath)
	if err != nil {
		return nil, frame.Schema{}, nil, err
	}
	frames, err := ingest.BuildAll(cmd.Context(), schema, doc.Frames, workers)
	if err != nil {
		return nil, frame.Schema{}, nil, err
	}
	return cfg, schema, frames, nil
}

func runEncode(cmd *cobra.Command, opts *EncodeOptions) error {
	cfg, _, frames, err := buildFrames(cmd, opts.ConfigPath, opts.ReadingsPath, opts.Workers)
	if err != nil {
		return err
	}

	out := make([]EncodedFrame, len(frames))
	for i, f := range frames {
		encoded := wire.Encode(f)
		out[i] = EncodedFrame{Index: i, Present: f.PresentCount(), Size: len(encoded), Hex: hex.EncodeToString(encoded)}
	}

	if opts.DBPath != "" {
		store, err := db.NewDB(opts.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		for i, f := range frames {
			id, err := store.InsertFrame(cmd.Context(), cfg.GetSensorID(), f)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			out[i].ID = id
		}
	}

	if opts.SerialPath != "" {
		sink, err := serialsink.OpenSink(opts.SerialPath, opts.Port)
		if err != nil {
			return err
		}
		defer sink.Close()
		for i, f := range frames {
			if err := sink.Send(f); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, out)
	}
	for _, ef := range out {
		if _, err := fmt.Fprintln(w, ef.Hex); err != nil {
			return err
		}
	}
	return nil
}
