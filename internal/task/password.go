package task

import (
	"crypto/rand"
	"fmt"
)

// passwordAlphabet avoids characters that need escaping in shell command
// lines or SQL string literals.
const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

const passwordLength = 12

// Password wraps a generated secret. Stringification substitutes the secret;
// the debug representation always redacts it, so a Password accidentally
// landing in a log call never leaks the plaintext.
type Password struct {
	value    string
	template string
}

// NewPassword generates a fresh random password of passwordLength characters
// drawn from passwordAlphabet.
func NewPassword() (Password, error) {
	buf := make([]byte, passwordLength)
	if _, err := rand.Read(buf); err != nil {
		return Password{}, fmt.Errorf("task: generate password: %w", err)
	}
	for i, b := range buf {
		buf[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return Password{value: string(buf), template: "%s"}, nil
}

// NewPasswordFromValue wraps a secret already generated elsewhere (e.g.
// parsed out of a subprocess's stdout), so it gets the same redaction
// treatment as one generated by NewPassword.
func NewPasswordFromValue(value string) Password {
	return Password{value: value, template: "%s"}
}

// String substitutes the secret into the configured template.
func (p Password) String() string {
	return fmt.Sprintf(p.template, p.value)
}

// GoString redacts the secret for debug/repr contexts (fmt's %#v, and any
// %+v on a struct embedding a Password shows this too via the Stringer).
func (p Password) GoString() string {
	return fmt.Sprintf("task.Password{%s}", fmt.Sprintf(p.template, "***"))
}

// Wrap derives a new Password embedding the already-rendered secret inside a
// larger line, e.g. Wrap("user:%s") for a chpasswd stdin line, while
// preserving redaction of the underlying secret.
func (p Password) Wrap(template string) Password {
	return Password{value: p.String(), template: template}
}
