// Package odk contains the capability shared by every ODK-family server
// integration (Ona, Kobo, ODK Central): credentials, the base url, a liveness
// check and the authenticated JSON plumbing providers build on.
package odk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ID identifies a project or a form on a server. Servers disagree on whether
// ids are numbers (Ona) or strings (Kobo, Central), numeric ids keep their
// decimal JSON form.
type ID string

func (id ID) String() string {
	return string(id)
}

// ParseID reads an id out of a raw JSON value, accepting strings and numbers.
func ParseID(raw json.RawMessage) (ID, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", ErrMalformedID
	}
	if trimmed[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedID, err)
		}
		return ID(s), nil
	}
	var n json.Number
	err := json.Unmarshal(raw, &n)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedID, trimmed)
	}
	return ID(n.String()), nil
}

// ProjectMap maps a project key (the owner name on Ona) to the project id.
// When two projects share a key the one listed last wins.
type ProjectMap map[string]ID

// FormMap maps a form name to its id, the form listed last wins on collision.
type FormMap map[string]ID

// ConnectionStatus is the success outcome of TestConnection.
type ConnectionStatus struct {
	StatusCode int
	Body       any
}

// Provider is the capability set every server integration implements.
type Provider interface {
	// TestConnection issues an authenticated GET against the configured url.
	// Transport failures and unparsable bodies come back as *ConnectionError.
	TestConnection(ctx context.Context) (ConnectionStatus, error)
	// DomainName returns the host of the configured url.
	DomainName() (string, error)
	// Projects lists the projects visible with the configured credentials.
	Projects(ctx context.Context) (ProjectMap, error)
	// FormList lists the forms within a project.
	FormList(ctx context.Context, projectId ID) (FormMap, error)
	// FormData returns the submissions of a form as decoded JSON, numbers
	// are decoded as json.Number.
	FormData(ctx context.Context, formId ID) (any, error)
}
