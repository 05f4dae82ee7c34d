package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hcis-sim/hcis-sim/sim"
	"github.com/hcis-sim/hcis-sim/sim/policy"
	"github.com/hcis-sim/hcis-sim/sim/workload"
)

var (
	evaluateScenarioFlags []string // repeated name=features.csv pairs
	evaluatePolicyPath    string
	evaluateOutDir        string
)

// scenarioSpec pairs a scenario name with its feature stream path.
type scenarioSpec struct {
	Name string
	Path string
}

// parseScenarioSpecs splits repeated name=path flags, keeping order.
func parseScenarioSpecs(flags []string) ([]scenarioSpec, error) {
	if len(flags) == 0 {
		return nil, fmt.Errorf("at least one --scenario flag is required")
	}
	specs := make([]scenarioSpec, 0, len(flags))
	seen := make(map[string]bool)
	for _, f := range flags {
		name, path, ok := strings.Cut(f, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid scenario %q, expected name=features.csv", f)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate scenario name %q", name)
		}
		seen[name] = true
		specs = append(specs, scenarioSpec{Name: name, Path: path})
	}
	return specs, nil
}

// evaluateCmd runs every scenario through the policy engine and the
// congestion simulator, scenarios in parallel, and writes per-scenario
// metrics plus a cross-scenario summary table.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the policy end to end over several scenarios",
	Long:  "Run each named scenario feature stream through the policy engine and congestion simulator. Scenarios run in parallel; a failing scenario is reported and skipped in the summary.",
	Run: func(cmd *cobra.Command, args []string) {
		specs, err := parseScenarioSpecs(evaluateScenarioFlags)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		table, err := policy.Load(evaluatePolicyPath)
		if err != nil {
			logrus.Fatalf("Failed to load policy table: %v", err)
		}
		if err := os.MkdirAll(evaluateOutDir, 0o755); err != nil {
			logrus.Fatalf("Failed to create output dir: %v", err)
		}

		scenarios := make([]sim.Scenario, 0, len(specs))
		for _, spec := range specs {
			records, err := workload.LoadFeatureStream(spec.Path)
			if err != nil {
				logrus.Fatalf("Failed to load scenario %s: %v", spec.Name, err)
			}
			scenarios = append(scenarios, sim.Scenario{Name: spec.Name, Records: records})
		}

		results := sim.RunScenarios(scenarios, table, sim.DefaultParams())

		var summaries []sim.Summary
		for _, res := range results {
			if res.Err != nil {
				continue
			}
			outPath := filepath.Join(evaluateOutDir, fmt.Sprintf("sim_%s.csv", res.Name))
			f, err := os.Create(outPath)
			if err != nil {
				logrus.Fatalf("Failed to create %s: %v", outPath, err)
			}
			if err := sim.WriteMetricsCSV(f, res.Metrics); err != nil {
				f.Close()
				logrus.Fatalf("Failed to write %s: %v", outPath, err)
			}
			f.Close()

			summary := sim.Summarize(res.Name, res.Metrics)
			summary.Print()
			summaries = append(summaries, summary)
		}

		summaryPath := filepath.Join(evaluateOutDir, "summary_end2end.csv")
		f, err := os.Create(summaryPath)
		if err != nil {
			logrus.Fatalf("Failed to create summary file: %v", err)
		}
		defer f.Close()
		if err := sim.WriteSummaryCSV(f, summaries); err != nil {
			logrus.Fatalf("Failed to write summary: %v", err)
		}
		logrus.Infof("Saved %s", summaryPath)
	},
}

func init() {
	evaluateCmd.Flags().StringArrayVar(&evaluateScenarioFlags, "scenario", nil, "Scenario as name=features.csv (can be repeated)")
	evaluateCmd.Flags().StringVar(&evaluatePolicyPath, "policy", "", "Path to policy table YAML")
	evaluateCmd.Flags().StringVar(&evaluateOutDir, "out-dir", "results/tables", "Directory for metrics and summary CSVs")
	_ = evaluateCmd.MarkFlagRequired("scenario")
	_ = evaluateCmd.MarkFlagRequired("policy")

	rootCmd.AddCommand(evaluateCmd)
}
