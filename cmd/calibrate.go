package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hcis-sim/hcis-sim/sim/policy"
	"github.com/hcis-sim/hcis-sim/sim/workload"
)

var (
	calibrateFeaturesPath string
	calibrateQuantile     float64
	calibrateOutPath      string
)

// calibrateCmd fits rule thresholds from a clean (attack-free) feature
// stream and writes the stock policy table around them.
var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Calibrate rule thresholds from a clean feature stream",
	Run: func(cmd *cobra.Command, args []string) {
		records, err := workload.LoadFeatureStream(calibrateFeaturesPath)
		if err != nil {
			logrus.Fatalf("Failed to load feature stream: %v", err)
		}

		features := []string{
			workload.FeatNewMMSIRate,
			workload.FeatMessageBurstiness,
			workload.FeatPositionJumpRate,
		}
		thresholds, err := policy.CalibrateThresholds(records, features, calibrateQuantile)
		if err != nil {
			logrus.Fatalf("Calibration failed: %v", err)
		}

		table := policy.DefaultTable(thresholds, calibrateQuantile)
		if err := table.Compile(); err != nil {
			logrus.Fatalf("Calibrated table does not compile: %v", err)
		}
		if err := table.Save(calibrateOutPath); err != nil {
			logrus.Fatalf("Failed to save policy table: %v", err)
		}

		logrus.Infof("Saved %s", calibrateOutPath)
		for feat, v := range thresholds {
			logrus.Infof("Threshold %s = %g", feat, v)
		}
	},
}

func init() {
	calibrateCmd.Flags().StringVar(&calibrateFeaturesPath, "features", "", "Path to clean feature stream CSV")
	calibrateCmd.Flags().Float64Var(&calibrateQuantile, "quantile", 0.999, "Quantile of clean traffic used as rule threshold")
	calibrateCmd.Flags().StringVar(&calibrateOutPath, "out", "policy_table.yaml", "Output policy table YAML path")
	_ = calibrateCmd.MarkFlagRequired("features")

	rootCmd.AddCommand(calibrateCmd)
}
