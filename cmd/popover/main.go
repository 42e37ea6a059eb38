package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/popover/internal/config"
	"github.com/ensigniasec/popover/internal/geometry"
	"github.com/ensigniasec/popover/internal/placement"
	"github.com/ensigniasec/popover/internal/tui"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Version metadata populated at build time via -ldflags.
	releaseVersion = "dev"
	commit         = "none"
	date           = "unknown"

	// Used for flags.
	configFile = config.DefaultPath
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "popover",
		Short: "Place floating panels next to their trigger without leaving the screen.",
		Long: `popover decides on which side of a trigger a floating panel opens, and how it is aligned, ` +
			`from the measured geometry of the trigger, the panel and the screen. ` +
			`Run "popover demo" for an interactive terminal demo or "popover resolve" to compute a single placement.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
)

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	// Route logs to stderr to avoid polluting stdout, especially for --json output.
	logrus.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Path to the YAML configuration file")

	resolveCmd.Flags().StringVar(&resolveViewport, "viewport", "", "Viewport size as WIDTHxHEIGHT (required)")
	resolveCmd.Flags().StringVar(&resolveTrigger, "trigger", "", "Trigger box as TOP,LEFT,WIDTHxHEIGHT (required)")
	resolveCmd.Flags().StringVar(&resolvePanel, "panel", "", "Panel size as WIDTHxHEIGHT (required)")
	resolveCmd.Flags().Float64Var(&resolveContentHeight, "content-height", 0, "Height of the panel's scrollable content")
	resolveCmd.Flags().StringSliceVar(&resolvePositions, "positions", nil, "Ordered candidate positions (default from config)")
	resolveCmd.Flags().StringSliceVar(&resolveAnchors, "anchors", nil, "Ordered candidate anchors (default from config)")
	resolveCmd.Flags().StringVar(&resolvePreferred, "preferred", "", "Position to try first: top or bottom")
	resolveCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the decision in JSON format instead of text")
	_ = resolveCmd.MarkFlagRequired("viewport")
	_ = resolveCmd.MarkFlagRequired("trigger")
	_ = resolveCmd.MarkFlagRequired("panel")

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	// Built-in version flag: set version string and a custom template.
	rootCmd.Version = releaseVersion
	rootCmd.Annotations = map[string]string{"commit": commit, "date": date}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func main() {
	Execute()
}

func loadConfig() config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		logrus.Fatalf("Unable to load config: %v", err)
	}
	return cfg
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Open the interactive terminal demo",
	Long:  "Show a screen of triggers whose panels reposition themselves as the terminal is resized. Works with the keyboard and the mouse.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if err := tui.Run(cmd.Context(), cfg); err != nil {
			logrus.Fatalf("TUI mode failed: %v", err)
		}
	},
}

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	resolveViewport      string
	resolveTrigger       string
	resolvePanel         string
	resolveContentHeight float64
	resolvePositions     []string
	resolveAnchors       []string
	resolvePreferred     string
	jsonOutput           bool
)

// resolveResult is the JSON shape printed by resolve --json.
type resolveResult struct {
	Decision placement.Decision `json:"decision"`
	Origin   placement.Offsets  `json:"origin"`
	Absolute placement.Offsets  `json:"absolute"`
	Snapshot geometry.Snapshot  `json:"snapshot"`
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Compute the placement for a single geometry",
	Example: `  popover resolve --viewport 800x600 --trigger 50,100,100x40 --panel 200x250
  popover resolve --viewport 800x600 --trigger 500,100,100x40 --panel 200x250 --preferred top --json`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := buildSnapshot()
		if err != nil {
			return err
		}
		prefs, err := buildPreferences(loadConfig().Preferences())
		if err != nil {
			return err
		}

		d := prefs.ResolveWith(snap)
		res := resolveResult{
			Decision: d,
			Origin:   placement.Origin(d, snap),
			Absolute: placement.AbsoluteOffsets(snap),
			Snapshot: snap,
		}
		return printResult(res)
	},
}

func buildSnapshot() (geometry.Snapshot, error) {
	vw, vh, err := parseSize(resolveViewport)
	if err != nil {
		return geometry.Snapshot{}, fmt.Errorf("--viewport: %w", err)
	}
	pw, ph, err := parseSize(resolvePanel)
	if err != nil {
		return geometry.Snapshot{}, fmt.Errorf("--panel: %w", err)
	}
	top, left, size, ok := splitTrigger(resolveTrigger)
	if !ok {
		return geometry.Snapshot{}, fmt.Errorf("--trigger: expected TOP,LEFT,WIDTHxHEIGHT, got %q", resolveTrigger)
	}
	tt, err := strconv.ParseFloat(top, 64)
	if err != nil {
		return geometry.Snapshot{}, fmt.Errorf("--trigger top: %w", err)
	}
	tl, err := strconv.ParseFloat(left, 64)
	if err != nil {
		return geometry.Snapshot{}, fmt.Errorf("--trigger left: %w", err)
	}
	tw, th, err := parseSize(size)
	if err != nil {
		return geometry.Snapshot{}, fmt.Errorf("--trigger: %w", err)
	}

	snap := geometry.Snapshot{
		TriggerTop:         tt,
		TriggerLeft:        tl,
		TriggerHeight:      th,
		TriggerWidth:       tw,
		PanelHeight:        ph,
		PanelWidth:         pw,
		ViewportWidth:      vw,
		ViewportHeight:     vh,
		PanelContentHeight: resolveContentHeight,
	}
	if err := snap.Validate(); err != nil {
		return geometry.Snapshot{}, err
	}
	return snap, nil
}

func splitTrigger(s string) (top, left, size string, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 { //nolint:mnd // TOP,LEFT,SIZE
		return "", "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]), true
}

// parseSize parses WIDTHxHEIGHT.
func parseSize(s string) (float64, float64, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("width: %w", err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("height: %w", err)
	}
	return width, height, nil
}

// buildPreferences overrides the configured preferences with any flags given.
func buildPreferences(prefs placement.Preferences) (placement.Preferences, error) {
	if len(resolvePositions) > 0 {
		prefs.Positions = prefs.Positions[:0:0]
		for _, s := range resolvePositions {
			p, err := placement.ParsePosition(strings.TrimSpace(s))
			if err != nil {
				return prefs, err
			}
			prefs.Positions = append(prefs.Positions, p)
		}
	}
	if len(resolveAnchors) > 0 {
		prefs.Anchors = prefs.Anchors[:0:0]
		for _, s := range resolveAnchors {
			a, err := placement.ParseAnchor(strings.TrimSpace(s))
			if err != nil {
				return prefs, err
			}
			prefs.Anchors = append(prefs.Anchors, a)
		}
	}
	if resolvePreferred != "" {
		p, err := placement.ParsePosition(resolvePreferred)
		if err != nil {
			return prefs, err
		}
		prefs.Preferred = p
	}
	return prefs, nil
}

func printResult(res resolveResult) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	position := res.Decision.Position.String()
	if !res.Decision.Placed() {
		position = "none (bottom sheet)"
	}
	anchor := res.Decision.Anchor.String()
	if !res.Decision.AnchorFeasible {
		anchor += " (fallback)"
	}
	fmt.Fprintf(os.Stdout, "position: %s\n", position)
	fmt.Fprintf(os.Stdout, "anchor:   %s\n", anchor)
	fmt.Fprintf(os.Stdout, "origin:   left=%d top=%d\n", res.Origin.Left, res.Origin.Top)
	fmt.Fprintf(os.Stdout, "absolute: left=%d top=%d\n", res.Absolute.Left, res.Absolute.Top)
	return nil
}

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var forceInit bool

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the popover configuration file",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.ExpandPath(configFile)
		if err != nil {
			logrus.Fatal(err)
		}
		if _, statErr := os.Stat(path); statErr == nil && !forceInit {
			logrus.Fatalf("Config file %s already exists; use --force to overwrite", path)
		} else if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			logrus.Fatal(statErr)
		}

		def := config.Default()
		def.Path = path
		if err := def.Save(); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Wrote default config to %s\n", def.Path)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		out, err := yaml.Marshal(cfg)
		if err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "# %s\n%s", cfg.Path, out)
	},
}
