package policy

// Mitigation action names the stock policy table emits. The effect
// catalog may define effects for further actions; the engine treats
// action names as opaque strings.
const (
	ActionThrottleAdmission     = "throttle_admission"
	ActionQuarantineNewMMSI     = "quarantine_new_mmsi"
	ActionIsolateSuspiciousMMSI = "isolate_suspicious_mmsi"
	ActionPQKeyRotation         = "pq_key_rotation_event"
)

// Rule is one entry of the policy table. Rules with lower Priority
// contribute their actions first; ties keep declaration order.
type Rule struct {
	ID       string   `yaml:"id"`
	If       Tree     `yaml:"if"`
	Then     []string `yaml:"then"`
	Severity int      `yaml:"severity"`
	Explain  string   `yaml:"explain"`
	Priority int      `yaml:"priority,omitempty"`
}

// Effect holds the numeric multipliers one mitigation action applies
// in the congestion model. Nil fields contribute nothing: absent
// admission/overhead multipliers read as 1.0, absent drop multipliers
// add no drop share.
type Effect struct {
	AdmissionRateMult     *float64 `yaml:"admission_rate_mult,omitempty"`
	ConsensusOverheadMult *float64 `yaml:"consensus_overhead_mult,omitempty"`
	DropNewMMSIMult       *float64 `yaml:"drop_new_mmsi_mult,omitempty"`
	DropSuspiciousMult    *float64 `yaml:"drop_suspicious_mult,omitempty"`
}
