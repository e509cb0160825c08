// Command isismon is a passive IS-IS level-2 LSP monitor. It decodes LSPs
// captured from an interface or read from a pcap file, keeps the latest
// version of each in a database and logs the adjacency changes between
// versions.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nrybowski/isis-parser/isismon/update"
	. "github.com/nrybowski/isis-parser/logging" // nolint
	"github.com/nrybowski/isis-parser/pdu"
	"github.com/nrybowski/isis-parser/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd returns the isismon command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "isismon",
		Short:        "Passive IS-IS level-2 LSP monitor",
		SilenceUsage: true,
	}
	root.AddCommand(newDecodeCmd(), newPcapCmd(), newRunCmd())
	return root
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode FILE...",
		Short: "Decode IS-IS PDUs from hex dump or binary files and print them as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := decodeFile(cmd.OutOrStdout(), path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newPcapCmd() *cobra.Command {
	var debug, trace string
	cmd := &cobra.Command{
		Use:   "pcap FILE",
		Short: "Replay a pcap capture and print the topology changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := InitLogging(trace, debug); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return replayPcap(ctx, cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().StringVar(&debug, "debug", "", "debug flags (http, lsp, packet, topo, update or all)")
	cmd.Flags().StringVar(&trace, "trace", "", "trace flags (http, lsp, packet, topo, update or all)")
	return cmd
}

func newRunCmd() *cobra.Command {
	flags := DefaultConfig()
	cmd := &cobra.Command{
		Use:   "run [CONFIG]",
		Short: "Monitor LSPs live on an interface and serve the management API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := DefaultConfig()
			if len(args) == 1 {
				var err error
				if config, err = LoadConfig(args[0]); err != nil {
					return err
				}
			}
			config.Override(cmd.Flags(), flags)
			if err := config.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, config)
		},
	}
	flags.AddFlags(cmd.Flags())
	return cmd
}

// readPDUBytes returns the content of path, hex decoded if the file is a hex
// dump.
func readPDUBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.Join(strings.Fields(string(data)), "")
	if text == "" {
		return data, nil
	}
	if b, err := hex.DecodeString(text); err == nil {
		return b, nil
	}
	return data, nil
}

func decodeFile(w io.Writer, path string) error {
	b, err := readPDUBytes(path)
	if err != nil {
		return err
	}
	pkts, rest, err := pdu.DecodeStream(b)
	if err != nil {
		return fmt.Errorf("%s: offset %d: %w", path, len(b)-len(rest), err)
	}
	if len(pkts) == 0 && len(rest) != 0 {
		_, _, err = pdu.Decode(rest)
		return fmt.Errorf("%s: %w", path, err)
	}
	if len(rest) != 0 {
		Warn("%s: %d trailing octets not decoded", path, len(rest))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for _, p := range pkts {
		if err = enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

func replayPcap(ctx context.Context, w io.Writer, path string) error {
	src, err := source.OpenPcap(path)
	if err != nil {
		return err
	}
	defer src.Close()

	first, err := src.Next(ctx)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return err
	}

	clock := clockwork.NewFakeClockAt(first.Timestamp)
	db := update.NewDB(clock, 0)
	m := NewReplayMonitor(src, db, NewMetrics(prometheus.NewRegistry()), clock)
	m.OnChange = func(c update.Change) {
		fmt.Fprintf(w, "%s %s\n", c.Time.UTC().Format(time.RFC3339), c)
	}
	_, _ = m.Input(first)
	if err = m.Run(ctx); err != nil {
		return err
	}
	stats := db.Stats()
	fmt.Fprintf(w, "lsps %d newer %d same %d older %d changes %d\n",
		stats.LSPs, stats.Newer, stats.Same, stats.Older, stats.Changes)
	return nil
}

func openSource(config *Config, clock clockwork.Clock) (source.Source, error) {
	if config.Capture.Interface != "" {
		return source.OpenInterface(config.Capture.Interface, clock)
	}
	return source.OpenPcap(config.Capture.PcapFile)
}

func run(ctx context.Context, config *Config) error {
	if err := SetLevel(config.Log.Level); err != nil {
		return err
	}
	if err := InitLogging(config.Log.Trace, config.Log.Debug); err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	src, err := openSource(config, clock)
	if err != nil {
		return err
	}
	defer src.Close()

	reg := prometheus.NewRegistry()
	db := update.NewDB(clock, config.DB.MaxChanges)
	m := NewMonitor(src, db, NewMetrics(reg), clock, time.Duration(config.DB.SweepInterval)*time.Second)
	m.OnChange = func(c update.Change) {
		Info("%s", c)
	}

	// A pcap source ends, the sweeper and the API keep serving the DB until
	// ctx is done.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.Run(ctx)
	})
	g.Go(func() error {
		return m.Sweeper(ctx)
	})
	if config.HTTP.Listen != "" {
		g.Go(func() error {
			return ServeManagement(ctx, config.HTTP.Listen, NewRouter(db, reg))
		})
	}
	return g.Wait()
}
