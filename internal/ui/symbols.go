package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Step completed
	SymbolFail     = "✗" // Step failed
	SymbolPending  = "○" // Not started
	SymbolComplete = "●" // Done
	SymbolSkipped  = "⊘" // Skipped
	SymbolWarning  = "⚠" // Data arrived with issues
)
