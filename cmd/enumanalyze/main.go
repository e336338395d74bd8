// Package main implements the CLI driver for the enum upcast analysis.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/309746069/enumanalysis/internal/ir"
	"github.com/309746069/enumanalysis/internal/ir/yamlprogram"
	"github.com/309746069/enumanalysis/pkg/enumanalysis"
)

// Config holds all command-line configuration options for enumanalyze.
type Config struct {
	ProgramFile string // path to the YAML program description
	Verbose     bool   // enables detailed output and statistics
	JSON        bool   // enables JSON output format
	Profile     bool   // enables CPU and memory profiling
}

const exitError = 2

// Set via ldflags during build.
var version = "dev"

var cfg Config

func main() {
	var rootCmd = &cobra.Command{
		Use:   "enumanalyze --program file.yaml",
		Short: "Find candidate enum classes never observed through an upcast",
		Long: `enumanalyze runs the enum upcast candidate analysis over a
YAML-described program and reports which candidate enum classes remain
safe to rewrite into plain integers.`,
		Example: `  enumanalyze --program prog.yaml             # text output
  enumanalyze --program prog.yaml --json       # JSON output
  enumanalyze -v --program prog.yaml           # verbose logging`,
		Args:               cobra.NoArgs,
		RunE:               runCommand,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Version:            version,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ProgramFile, "program", "", "Path to a YAML program description (required)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&cfg.JSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&cfg.Profile, "profile", false, "Enable CPU and memory profiling (writes cpu.prof and mem.prof to current directory)")
	_ = rootCmd.MarkPersistentFlagRequired("program")

	if err := rootCmd.Execute(); err != nil {
		_ = teardown(nil, nil)
		if err.Error() != "" {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(exitError)
	}
}

// Result is the analysis output: the surviving candidate types, plus the
// ones that were rejected (for diagnostics) and run statistics.
type Result struct {
	Survived []string `json:"survived"`
	Rejected []string `json:"rejected"`
	Stats    struct {
		TotalCandidates  int           `json:"total_candidates"`
		AnalysisDuration time.Duration `json:"analysis_duration"`
	} `json:"stats"`
}

func runCommand(cmd *cobra.Command, args []string) error {
	slog.Info("loading program", "file", cfg.ProgramFile)
	prog, candidates, err := yamlprogram.Load(cfg.ProgramFile)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	slog.Info("loaded program", "candidates", len(candidates))

	start := time.Now()
	survived, err := enumanalysis.RejectUnsafeEnums(prog, candidates)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	duration := time.Since(start)
	slog.Info("analysis completed", "dur", duration)

	result := convertToResult(prog, candidates, survived, duration)
	return writeResults(result, &cfg)
}

func convertToResult(prog ir.Program, all, survived []ir.TypeId, dur time.Duration) *Result {
	survivedSet := make(map[ir.TypeId]struct{}, len(survived))
	for _, t := range survived {
		survivedSet[t] = struct{}{}
	}

	r := &Result{}
	r.Stats.TotalCandidates = len(all)
	r.Stats.AnalysisDuration = dur

	for _, t := range survived {
		r.Survived = append(r.Survived, prog.TypeName(t))
	}
	for _, t := range all {
		if _, ok := survivedSet[t]; !ok {
			r.Rejected = append(r.Rejected, prog.TypeName(t))
		}
	}
	sort.Strings(r.Survived)
	sort.Strings(r.Rejected)
	return r
}

func writeResults(result *Result, cfg *Config) error {
	var output string
	var err error

	if cfg.JSON {
		output, err = formatJSONOutput(result)
	} else {
		output = formatTextOutput(result, cfg)
	}
	if err != nil {
		return err
	}
	fmt.Print(output)
	return nil
}

func formatJSONOutput(result *Result) (string, error) {
	data, err := json.MarshalIndent(jOutput{
		Survived:  result.Survived,
		Rejected:  result.Rejected,
		Stats:     result.Stats,
		Version:   version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling json output: %w", err)
	}
	return string(data), nil
}

func formatTextOutput(result *Result, cfg *Config) string {
	var sb strings.Builder
	if cfg.Verbose {
		slog.Info("",
			"total_candidates", result.Stats.TotalCandidates,
			"survived", len(result.Survived),
			"rejected", len(result.Rejected),
			"analysis_duration", result.Stats.AnalysisDuration.String())
	}
	for _, name := range result.Survived {
		sb.WriteString(name)
		sb.WriteString("\n")
	}
	if cfg.Verbose {
		for _, name := range result.Rejected {
			sb.WriteString("# rejected: ")
			sb.WriteString(name)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

type jOutput struct {
	Survived  []string `json:"survived"`
	Rejected  []string `json:"rejected"`
	Stats     any      `json:"stats"`
	Version   string   `json:"version"`
	Timestamp string   `json:"timestamp"`
}

var cpuProfile *os.File

func setup(_ *cobra.Command, _ []string) error {
	slog.SetDefault(slog.New(slog.DiscardHandler))
	if cfg.Verbose {
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
		if cfg.JSON {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(handler))
	}

	if !cfg.Profile {
		return nil
	}

	var err error
	cpuProfile, err = os.Create("cpu.prof")
	if err != nil {
		return fmt.Errorf("creating cpu.prof: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuProfile); err != nil {
		_ = cpuProfile.Close()
		return fmt.Errorf("starting CPU profile: %w", err)
	}
	slog.Info("cpu profiling started", "file", "cpu.prof")
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if !cfg.Profile || cpuProfile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	defer cpuProfile.Close()
	slog.Info("cpu profiling stopped", "file", "cpu.prof")

	memFile, err := os.Create("mem.prof")
	if err != nil {
		return fmt.Errorf("creating mem.prof: %w", err)
	}
	defer memFile.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("writing memory profile: %w", err)
	}
	slog.Info("memory profiling completed", "file", "mem.prof")
	return nil
}
