package security

import (
	"regexp"
	"sort"
	"strings"
)

// Mask replaces every secret occurrence in redacted output.
const Mask = "********"

// secretNamePattern matches variable names treated as secrets without being listed explicitly.
var secretNamePattern = regexp.MustCompile(`(?i)(PASS|SECRET|TOKEN|KEY)`)

type Redactor struct {
	Secrets []string
}

// IsSecretName reports whether a variable name looks like it holds a credential.
func IsSecretName(name string) bool {
	return secretNamePattern.MatchString(name)
}

// NewRedactor collects the substituted values of secret variables. A variable is secret
// when its name matches IsSecretName or appears in extraNames.
func NewRedactor(vars map[string]string, extraNames []string) *Redactor {
	extra := make(map[string]struct{}, len(extraNames))
	for _, name := range extraNames {
		extra[name] = struct{}{}
	}

	var secretValues []string
	for name, val := range vars {
		if val == "" {
			continue
		}
		if _, listed := extra[name]; listed || IsSecretName(name) {
			secretValues = append(secretValues, val)
		}
	}
	return &Redactor{
		Secrets: secretValues,
	}
}

func (r *Redactor) Redact(s string) string {
	if r == nil || len(r.Secrets) == 0 {
		return s
	}

	// Longer secrets first so a secret containing another is masked whole.
	secrets := make([]string, len(r.Secrets))
	copy(secrets, r.Secrets)
	sort.Slice(secrets, func(i, j int) bool {
		return len(secrets[i]) > len(secrets[j])
	})

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, Mask)
	}
	return s
}
