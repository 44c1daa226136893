package progress

import (
	"os"

	"golang.org/x/term"
)

// ASCIIEnv forces ASCII symbols when set to "1".
const ASCIIEnv = "WEBHOOK_NOTIFIER_ASCII"

// DetectTerminalCapabilities inspects f, usually os.Stderr since stdout
// carries the hook protocol.
func DetectTerminalCapabilities(f *os.File) TerminalCapabilities {
	isTTY := f != nil && term.IsTerminal(int(f.Fd()))

	noColor := os.Getenv("NO_COLOR") != ""
	forceASCII := os.Getenv(ASCIIEnv) == "1"

	width := 0
	if isTTY {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
		Width:           width,
	}
}

// SelectSymbols returns the appropriate symbol set based on terminal capabilities
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return ProgressSymbols{
			Checkmark:  "✓",
			Failure:    "✗",
			SpinnerSet: 14, // ⠋ ⠙ ⠹ ⠸ ⠼ ⠴ ⠦ ⠧ ⠇ ⠏
		}
	}

	return ProgressSymbols{
		Checkmark:  "[OK]",
		Failure:    "[FAIL]",
		SpinnerSet: 9, // | / - \
	}
}
