package odk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"odk-pull/internal/components/assert"
	"odk-pull/internal/components/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_connection_test_connection = "connection.test-connection"
	report_connection_domain_name     = "connection.domain-name"
)

const DefaultTimeout = time.Second * 30

type Options struct {
	Username string
	Password string
	Url      string
	// if unspecified, DefaultTimeout is used
	Timeout time.Duration
	// if unspecified, telemetry.SlogAPI is used
	Telemetry telemetry.API
}

// Connection holds the credentials and base url of a server and performs
// authenticated JSON requests against it. It is embedded by every provider.
type Connection struct {
	username string
	password string
	url      string

	Http *resty.Client
	Tel  telemetry.API
}

// NewConnection stores the credentials and url verbatim, no validation is
// done until a request is made. `namespace` scopes the telemetry reports.
func NewConnection(namespace string, opts Options) *Connection {
	assert.NotEmptyStr("namespace", namespace)

	var tel telemetry.API = telemetry.SlogAPI{}
	if opts.Telemetry != nil {
		tel = opts.Telemetry
	}
	tel = telemetry.NewScopedAPI(namespace, tel)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := resty.New()
	httpClient.SetTimeout(timeout)
	httpClient.SetBasicAuth(opts.Username, opts.Password)
	httpClient.SetHeader("accept", "application/json")
	httpClient.SetHeader("user-agent", "odk-pull/1.0")

	telemetry.InstrumentResty(httpClient, tel)

	return &Connection{
		username: opts.Username,
		password: opts.Password,
		url:      opts.Url,
		Http:     httpClient,
		Tel:      tel,
	}
}

func (c *Connection) Username() string {
	return c.username
}

func (c *Connection) Url() string {
	return c.url
}

// TestConnection issues an authenticated GET to the configured url and returns
// the status code with the parsed body. Any non-2xx status with a JSON body is
// still a successful outcome.
func (c *Connection) TestConnection(ctx context.Context) (ConnectionStatus, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		c.Tel.ReportBroken(report_connection_test_connection, fmt.Errorf("fetch: %w", err))
		return ConnectionStatus{}, &ConnectionError{Url: c.url, Cause: err}
	}

	body, err := decodeBody(res.Body())
	if err != nil {
		c.Tel.ReportBroken(report_connection_test_connection, err, res.StatusCode())
		return ConnectionStatus{}, &ConnectionError{Url: c.url, Cause: err}
	}

	return ConnectionStatus{
		StatusCode: res.StatusCode(),
		Body:       body,
	}, nil
}

// DomainName returns the host (including any port) of the configured url.
func (c *Connection) DomainName() (string, error) {
	parsed, err := url.Parse(c.url)
	if err != nil {
		c.Tel.ReportWarning(report_connection_domain_name, err)
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		c.Tel.ReportWarning(report_connection_domain_name, c.url)
		return "", fmt.Errorf("%w: %q has no scheme or host", ErrMalformedURL, c.url)
	}
	return parsed.Host, nil
}

// Endpoint resolves an absolute path against the scheme and host of the
// configured url, the path of the configured url itself is ignored.
func (c *Connection) Endpoint(path string) (string, error) {
	domain, err := c.DomainName()
	if err != nil {
		return "", err
	}
	parsed, _ := url.Parse(c.url)
	return fmt.Sprintf("%s://%s%s", parsed.Scheme, domain, path), nil
}

// Get requests `path` on the server's domain and returns the raw JSON body.
//
// Transport failures and non-JSON bodies produce *ConnectionError, non-2xx
// statuses produce *StatusError.
func (c *Connection) Get(ctx context.Context, path string) (json.RawMessage, error) {
	endpoint, err := c.Endpoint(path)
	if err != nil {
		return nil, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, &ConnectionError{Url: endpoint, Cause: err}
	}
	if res.IsError() {
		return nil, &StatusError{
			Url:        endpoint,
			StatusCode: res.StatusCode(),
			Body:       res.String(),
		}
	}

	body := res.Body()
	if !json.Valid(body) {
		return nil, &ConnectionError{Url: endpoint, Cause: ErrInvalidJSON}
	}
	return json.RawMessage(body), nil
}

// Decode unmarshals a raw body into `out`, shape mismatches are reported as
// ErrUnexpectedShape.
func Decode(raw json.RawMessage, out any) error {
	err := json.Unmarshal(raw, out)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return nil
}

// DecodeAny decodes a raw body into generic values, keeping numbers as json.Number.
func DecodeAny(raw json.RawMessage) (any, error) {
	return decodeBody(raw)
}

func decodeBody(body []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var out any
	err := decoder.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data after body", ErrInvalidJSON)
	}
	return out, nil
}

// StringField reads a string value out of a decoded JSON object.
func StringField(object map[string]json.RawMessage, field string) (string, error) {
	raw, ok := object[field]
	if !ok {
		return "", MissingField(field)
	}
	var value string
	err := json.Unmarshal(raw, &value)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a string", ErrUnexpectedShape, field)
	}
	return value, nil
}

// IDField reads an id out of a decoded JSON object.
func IDField(object map[string]json.RawMessage, field string) (ID, error) {
	raw, ok := object[field]
	if !ok {
		return "", MissingField(field)
	}
	id, err := ParseID(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return id, nil
}

// NullableIDField is IDField except that an explicit null yields the empty
// ID. A missing field is still an error.
func NullableIDField(object map[string]json.RawMessage, field string) (ID, error) {
	raw, ok := object[field]
	if ok && string(bytes.TrimSpace(raw)) == "null" {
		return "", nil
	}
	return IDField(object, field)
}
