package translate

import (
	"strings"
	"unicode"
)

// SnakeCase converts a manifest key to an attribute name by inserting an
// underscore at every lowercase-to-uppercase transition and lowercasing the
// result: "containerPort" becomes "container_port" and "StatefulSet" becomes
// "stateful_set". Runs of capitals are not split, so "podIP" becomes "pod_ip".
func SnakeCase(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 4)

	prevLower := false

	for _, r := range s {
		if prevLower && unicode.IsUpper(r) {
			sb.WriteByte('_')
		}

		prevLower = unicode.IsLower(r)

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}
