package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hcis-sim/hcis-sim/sim"
	"github.com/hcis-sim/hcis-sim/sim/policy"
	"github.com/hcis-sim/hcis-sim/sim/workload"
)

var (
	runFeaturesPath string // per-window feature stream CSV
	runPolicyPath   string // policy table YAML
	runOutPath      string // metrics CSV destination ("" = stdout)

	baseCapacityTPS      float64
	baseOfferedPerWindow float64
	baseLatencyMS        float64
)

// runCmd evaluates the policy table over one feature stream and folds
// the result through the congestion simulator.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scenario through the policy engine and congestion simulator",
	Run: func(cmd *cobra.Command, args []string) {
		table, err := policy.Load(runPolicyPath)
		if err != nil {
			logrus.Fatalf("Failed to load policy table: %v", err)
		}
		records, err := workload.LoadFeatureStream(runFeaturesPath)
		if err != nil {
			logrus.Fatalf("Failed to load feature stream: %v", err)
		}

		params := sim.Params{
			BaseCapacityTPS:      baseCapacityTPS,
			BaseOfferedPerWindow: baseOfferedPerWindow,
			BaseLatencyMS:        baseLatencyMS,
		}
		logrus.Infof("Starting simulation over %d windows with %d rules", len(records), len(table.Rules))

		_, metrics, err := sim.EvaluateScenario(records, table, params)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		out := os.Stdout
		if runOutPath != "" {
			f, err := os.Create(runOutPath)
			if err != nil {
				logrus.Fatalf("Failed to create output file: %v", err)
			}
			defer f.Close()
			out = f
		}
		if err := sim.WriteMetricsCSV(out, metrics); err != nil {
			logrus.Fatalf("Failed to write metrics: %v", err)
		}

		sim.Summarize("run", metrics).Print()
		logrus.Info("Simulation complete.")
	},
}

func init() {
	runCmd.Flags().StringVar(&runFeaturesPath, "features", "", "Path to feature stream CSV")
	runCmd.Flags().StringVar(&runPolicyPath, "policy", "", "Path to policy table YAML")
	runCmd.Flags().StringVar(&runOutPath, "out", "", "Metrics CSV output path (default stdout)")
	runCmd.Flags().Float64Var(&baseCapacityTPS, "base-capacity-tps", 180.0, "Processing capacity at 1.0 consensus overhead")
	runCmd.Flags().Float64Var(&baseOfferedPerWindow, "base-offered-per-window", 150.0, "Nominal offered load per window")
	runCmd.Flags().Float64Var(&baseLatencyMS, "base-latency-ms", 120.0, "Latency at zero backlog")
	_ = runCmd.MarkFlagRequired("features")
	_ = runCmd.MarkFlagRequired("policy")

	rootCmd.AddCommand(runCmd)
}
