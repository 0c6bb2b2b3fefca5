package validation

import (
	"regexp"
	"sort"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

const (
	MinNameLength     = 2
	MinPasswordLength = 8
	MinCompanyLength  = 2
)

// Errors maps a field name to a user facing message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func IsEmail(s string) bool { return emailRe.MatchString(s) }
func IsPhone(s string) bool { return phoneRe.MatchString(s) }

func Email(errs Errors, field, v string) {
	switch {
	case strings.TrimSpace(v) == "":
		errs.Add(field, "Correo electrónico es requerido")
	case !IsEmail(v):
		errs.Add(field, "Formato de correo electrónico inválido")
	}
}

func Name(errs Errors, field, label, v string) {
	if len([]rune(strings.TrimSpace(v))) < MinNameLength {
		errs.Add(field, label+" debe tener al menos 2 caracteres")
	}
}

func Phone(errs Errors, field, v string) {
	switch {
	case strings.TrimSpace(v) == "":
		errs.Add(field, "Teléfono es requerido")
	case !IsPhone(v):
		errs.Add(field, "Formato de teléfono inválido (000-000-0000)")
	}
}

func Password(errs Errors, field, v string) {
	switch {
	case v == "":
		errs.Add(field, "Contraseña es requerida")
	case len([]rune(v)) < MinPasswordLength:
		errs.Add(field, "La contraseña debe tener al menos 8 caracteres")
	}
}

func Company(errs Errors, field, v string) {
	if len([]rune(strings.TrimSpace(v))) < MinCompanyLength {
		errs.Add(field, "Nombre de empresa debe tener al menos 2 caracteres")
	}
}

func Required(errs Errors, field, msg, v string) {
	if strings.TrimSpace(v) == "" {
		errs.Add(field, msg)
	}
}

// SanitizeString trims and collapses inner whitespace runs to one space.
func SanitizeString(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

func SanitizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizePhone formats a 10 digit number as XXX-XXX-XXXX; anything else is
// returned trimmed so validation can reject it.
func SanitizePhone(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) == 10 {
		return d[:3] + "-" + d[3:6] + "-" + d[6:]
	}
	return strings.TrimSpace(s)
}
