package exitcodes

// Exit codes for the langprune CLI
// These codes form the contract with packaging scripts and CI
const (
	Success         = 0 // Pruning finished (or nothing to prune)
	InvalidConfig   = 2 // Bad flags/config, or the whitelist would remove every language
	SafetyViolation = 3 // Safety validator blocked a delete target
	RuntimeError    = 4 // Enumeration or deletion failed
)
