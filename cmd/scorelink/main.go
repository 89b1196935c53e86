// Package main provides the scorelink CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OFFIS-RIT/scorelink/internal/config"
	"github.com/OFFIS-RIT/scorelink/internal/pipeline"
	"github.com/OFFIS-RIT/scorelink/internal/storage"
	"github.com/OFFIS-RIT/scorelink/internal/util"
	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/logger/console"
	"github.com/OFFIS-RIT/scorelink/pkg/sheet"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
)

var (
	configPath string
	debugFlag  bool

	resolveKey string

	inspectFrom  string
	inspectBack  bool
	inspectLimit int
	inspectJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "scorelink",
	Short: "Link secondary music symbols to their chords",
	Long: `scorelink resolves the interpretation graph of a classified score page:
it links dynamics, pedals, wedges, fermatas and texts to chords and stores
the resulting interpretation index.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.LoadEnv()
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
			Debug: debugFlag || util.GetEnvBool("DEBUG", false),
		}))
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <document>",
	Short: "Resolve a JSON or YAML score document and store its index",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <key>",
	Short: "List the inters of a stored index",
	Long: `List the inters of a stored index in id order.

Examples:
  scorelink inspect etude-V1StGXR8 --from I40     # inters after I40
  scorelink inspect etude-V1StGXR8 --back -n 5    # last five inters`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML configuration file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	resolveCmd.Flags().StringVar(&resolveKey, "key", "", "Snapshot key (default: <document name>-<random id>)")

	inspectCmd.Flags().StringVar(&inspectFrom, "from", "", "Start after (or before, with --back) this id")
	inspectCmd.Flags().BoolVar(&inspectBack, "back", false, "Walk the index backwards")
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 20, "Maximum number of inters to list")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(resolveCmd, inspectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	doc, err := sheet.DecodeFile(args[0])
	if err != nil {
		return err
	}

	s, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	params, err := pipeline.ParamsFromConfig(cfg, s)
	if err != nil {
		return err
	}
	params.Key = resolveKey

	res, err := pipeline.Resolve(ctx, doc, params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Resolved %s: %d systems, %d inters\n", doc.Name, len(res.Sheet.Systems()), res.Sheet.Inters.Len())
	for _, r := range res.Reports {
		linked, unlinked := 0, 0
		for _, n := range r.Linked {
			linked += n
		}
		for _, n := range r.Unlinked {
			unlinked += n
		}
		fmt.Fprintf(out, "  system %d: %d linked, %d unlinked, %d deleted\n", r.System, linked, unlinked, r.Deleted)
		for _, u := range r.Unsupported {
			fmt.Fprintf(out, "    unsupported: %v\n", u)
		}
	}
	if len(res.Pending) > 0 {
		fmt.Fprintf(out, "  failed systems: %v\n", res.Pending)
	}
	fmt.Fprintf(out, "Snapshot: %s\n", res.Key)
	return nil
}

type inspectEntry struct {
	ID     string    `json:"id"`
	Kind   sig.Kind  `json:"kind"`
	Shape  sig.Shape `json:"shape,omitempty"`
	Grade  float64   `json:"grade"`
	Bounds string    `json:"bounds"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	s, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	x, err := pipeline.LoadIndex(ctx, s, args[0])
	if err != nil {
		return err
	}

	var entries []inspectEntry
	id := inspectFrom
	if inspectBack && id == "" {
		id = fmt.Sprintf("%s%d", x.Prefix(), x.LastIDValue()+1)
	}
	for len(entries) < inspectLimit {
		var ok bool
		if inspectBack {
			id, ok = x.IDBefore(id)
		} else {
			id, ok = x.IDAfter(id)
		}
		if !ok {
			break
		}
		inter, _ := x.Get(id)
		b := inter.Bounds
		entries = append(entries, inspectEntry{
			ID:     id,
			Kind:   inter.Kind,
			Shape:  inter.Shape,
			Grade:  inter.BestGrade(),
			Bounds: fmt.Sprintf("%g,%g %gx%g", b.X, b.Y, b.Width, b.Height),
		})
	}

	return printEntries(cmd.OutOrStdout(), x.LastID(), x.Len(), entries)
}

func printEntries(out io.Writer, lastID string, total int, entries []inspectEntry) error {
	if inspectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	fmt.Fprintf(out, "%d inters, last id %s\n", total, lastID)
	for _, e := range entries {
		fmt.Fprintf(out, "%-6s %-12s %-18s %.2f  %s\n", e.ID, e.Kind, e.Shape, e.Grade, e.Bounds)
	}
	return nil
}
