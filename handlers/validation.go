package handlers

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

// validator collects per-field problems so a form gets every error in one response.
type validator struct {
	fields map[string]string
}

func newValidator() *validator {
	return &validator{fields: map[string]string{}}
}

func (v *validator) ok() bool {
	return len(v.fields) == 0
}

func (v *validator) add(field, msg string) {
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = msg
	}
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
	}
}

func (v *validator) maxLen(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		v.add(field, fmt.Sprintf("must be at most %d characters", n))
	}
}

func (v *validator) email(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
		return
	}
	v.maxLen(field, value, 254)
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != strings.TrimSpace(value) || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		v.add(field, "must be a valid email address")
	}
}

func (v *validator) httpUrl(field, value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.add(field, "must be an http or https url")
	}
}

func (v *validator) rangeInt(field string, value, min, max int) {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
}

var slugChars = func() [256]bool {
	var t [256]bool
	for c := 'a'; c <= 'z'; c++ {
		t[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	t['-'] = true
	return t
}()

func (v *validator) slug(field, value string) {
	if value == "" {
		v.add(field, "is required")
		return
	}
	if len(value) > 100 || value[0] == '-' || value[len(value)-1] == '-' {
		v.add(field, "must be lowercase letters, digits and dashes")
		return
	}
	for i := 0; i < len(value); i++ {
		if !slugChars[value[i]] {
			v.add(field, "must be lowercase letters, digits and dashes")
			return
		}
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
