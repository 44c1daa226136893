package notify

import "regexp"

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render replaces {{name}} placeholders with vars[name]. Unknown names
// render as "".
func Render(tmpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		return vars[placeholderPattern.FindStringSubmatch(m)[1]]
	})
}
