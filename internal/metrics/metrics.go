package metrics

// Outcome labels for RecordTransaction besides the engine's rejection reasons.
const (
	OutcomeApplied = "applied"
)

// Collector defines the interface for collecting processing metrics.
// Implementations can export to various backends.
type Collector interface {
	// RecordTransaction counts one processed transaction. Outcome is
	// OutcomeApplied or the engine's rejection reason.
	RecordTransaction(kind string, outcome string)
	// RecordMalformed counts a feed row that could not be decoded.
	RecordMalformed()
	// RecordAccounts reports the final number of unlocked and locked accounts.
	RecordAccounts(active, locked int)
}

// NoOpCollector is the default Collector when metrics are disabled.
type NoOpCollector struct{}

// RecordTransaction does nothing.
func (NoOpCollector) RecordTransaction(kind string, outcome string) {}

// RecordMalformed does nothing.
func (NoOpCollector) RecordMalformed() {}

// RecordAccounts does nothing.
func (NoOpCollector) RecordAccounts(active, locked int) {}
