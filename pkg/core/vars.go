package core

import "regexp"

// VarContext holds the environment variables substituted into a configuration.
type VarContext map[string]string

// placeholderRegex matches ${NAME} and ${NAME:default}; "\}" does not close the placeholder.
var placeholderRegex = regexp.MustCompile(`\$\{(?:\\\}|[^}])*\}`)

// ExpandEnv replaces every placeholder in data with the looked-up value. A
// variable that is unset or empty yields its default, or the empty string.
// The returned VarContext records each substituted name and value.
func ExpandEnv(data string, lookup func(string) (string, bool)) (string, VarContext) {
	vars := make(VarContext)
	out := placeholderRegex.ReplaceAllStringFunc(data, func(match string) string {
		name, def := splitPlaceholder(match[2 : len(match)-1])
		val, ok := lookup(name)
		if !ok || val == "" {
			val = def
		}
		vars[name] = val
		return val
	})
	return out, vars
}

// splitPlaceholder separates NAME from default at the first ':' that is
// neither the first character nor escaped with a backslash. The default is
// kept verbatim, so an escaped "\}" keeps its backslash.
func splitPlaceholder(body string) (name, def string) {
	for i := 1; i < len(body); i++ {
		if body[i] == ':' && body[i-1] != '\\' {
			return body[:i], body[i+1:]
		}
	}
	return body, ""
}
