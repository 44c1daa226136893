package progress

// TerminalCapabilities describes what the output stream can render.
type TerminalCapabilities struct {
	// IsTTY indicates whether the stream is an interactive terminal
	IsTTY bool
	// SupportsColor indicates whether ANSI colors may be used
	SupportsColor bool
	// SupportsUnicode indicates whether Unicode symbols may be used
	SupportsUnicode bool
	// Width is the terminal width in columns (0 if unknown/pipe)
	Width int
}

// ProgressSymbols defines the character set for visual indicators
type ProgressSymbols struct {
	// Checkmark is the success indicator ("✓" or "[OK]")
	Checkmark string
	// Failure is the failure indicator ("✗" or "[FAIL]")
	Failure string
	// SpinnerSet is the index into spinner.CharSets
	SpinnerSet int
}
