package telemetry

import (
	"fmt"
)

// API is the sink providers and the HTTP layer report through. Tests swap in
// a Recorder to assert which components reported what.
type API interface {
	// ReportBroken reports that a component failed to do its job.
	//
	// `id` names the component, not the step inside it that failed: a
	// FormList call on Ona whose HTTP request fails reports
	// "client.form-list" and carries the cause as a param. Ids are
	// lowercase, dots separate a component from its method and dashes
	// separate words.
	//
	// A failure is reported once, by the outermost component that returns
	// it to a caller. Helpers that return the error upward do not report it.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something unexpected that did not stop the
	// component, such as a skipped record. `id` follows ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports detail only useful when tracing a single run.
	ReportDebug(msg string, params ...any)

	// ReportCount reports how many items the last call of `id` produced.
	// Counts are samples over time and should not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, usually the provider kind,
// giving ids like "kobo: client.projects".
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) qualify(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.qualify(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.qualify(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.qualify(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.qualify(id), count)
}
