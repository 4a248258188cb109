package handlers

import (
	"net/mail"
	"strings"

	"github.com/artem13815/tasktracker/api/http/presenter"
)

// fieldErrors collects request-shape problems before a use case is called.
type fieldErrors []presenter.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, presenter.FieldError{Field: field, Message: message})
}

func (f fieldErrors) empty() bool { return len(f) == 0 }

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}
