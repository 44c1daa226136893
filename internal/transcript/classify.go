package transcript

import (
	"regexp"

	"github.com/ariel-frischer/webhook-notifier/internal/hook"
)

// Each rule pairs ASCII word-boundary tokens with CJK tokens. RE2 word
// boundaries only apply to ASCII, so the CJK alternatives are unanchored.
var (
	questionPattern = regexp.MustCompile(
		`[?？]|(?i)\b(how|what|why|when|where|which|who)\b|吗|呢|如何|怎么|什么|哪|为什么`)
	confirmationPattern = regexp.MustCompile(
		`(?i)\b(approve|confirm|agree|okay|ok)\b|是否|同意|确认|可以吗|需要吗|要不要`)
	choicePattern = regexp.MustCompile(
		`(?im)(^|\s)[0-9]+[.)](\s|$)|\b(option|choose|select|or)\b|选择|或者|还是`)
)

// Classify returns the first matching message type in the order question,
// confirmation, choice; anything else is info.
func Classify(message string) hook.MessageType {
	switch {
	case questionPattern.MatchString(message):
		return hook.MessageQuestion
	case confirmationPattern.MatchString(message):
		return hook.MessageConfirmation
	case choicePattern.MatchString(message):
		return hook.MessageChoice
	default:
		return hook.MessageInfo
	}
}
