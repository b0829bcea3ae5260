// Package ona implements odk.Provider against the Ona v1 REST API.
package ona

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"odk-pull/internal/odk"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("odk/ona")

const (
	report_client_projects  = "client.projects"
	report_client_form_list = "client.form-list"
	report_client_form_data = "client.form-data"
)

// Client implements odk.Provider for Ona servers.
type Client struct {
	*odk.Connection
}

var _ odk.Provider = (*Client)(nil)

func NewClient(opts odk.Options) *Client {
	return &Client{Connection: odk.NewConnection("ona", opts)}
}

// Projects lists projects as owner name -> project id. The owner is given by
// the server as a url, only its last path segment is kept. A null projectid
// is kept as the empty ID.
func (c *Client) Projects(ctx context.Context) (odk.ProjectMap, error) {
	ctx, span := tracer.Start(ctx, "client:Projects")
	defer span.End()

	raw, err := c.Get(ctx, "/api/v1/projects")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch projects")
		c.Tel.ReportBroken(report_client_projects, fmt.Errorf("fetch: %w", err))
		return nil, err
	}

	var list []map[string]json.RawMessage
	err = odk.Decode(raw, &list)
	if err != nil {
		span.SetStatus(codes.Error, "failed to decode projects")
		c.Tel.ReportBroken(report_client_projects, err)
		return nil, err
	}

	projects := odk.ProjectMap{}
	for _, project := range list {
		owner, err := odk.StringField(project, "owner")
		if err != nil {
			c.Tel.ReportBroken(report_client_projects, err)
			return nil, err
		}
		id, err := odk.NullableIDField(project, "projectid")
		if err != nil {
			c.Tel.ReportBroken(report_client_projects, err)
			return nil, err
		}
		segments := strings.Split(owner, "/")
		projects[segments[len(segments)-1]] = id
	}

	c.Tel.ReportCount(report_client_projects, int64(len(projects)))
	return projects, nil
}

// FormList lists the forms of a project as form name -> form id. A null
// formid is kept as the empty ID.
func (c *Client) FormList(ctx context.Context, projectId odk.ID) (odk.FormMap, error) {
	ctx, span := tracer.Start(ctx, "client:FormList")
	defer span.End()

	raw, err := c.Get(ctx, "/api/v1/projects/"+url.PathEscape(projectId.String()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch project")
		c.Tel.ReportBroken(report_client_form_list, fmt.Errorf("fetch: %w", err), projectId)
		return nil, err
	}

	var project map[string]json.RawMessage
	err = odk.Decode(raw, &project)
	if err != nil {
		c.Tel.ReportBroken(report_client_form_list, err, projectId)
		return nil, err
	}
	rawForms, ok := project["forms"]
	if !ok {
		err := odk.MissingField("forms")
		c.Tel.ReportBroken(report_client_form_list, err, projectId)
		return nil, err
	}
	var list []map[string]json.RawMessage
	err = odk.Decode(rawForms, &list)
	if err != nil {
		c.Tel.ReportBroken(report_client_form_list, err, projectId)
		return nil, err
	}

	forms := odk.FormMap{}
	for _, form := range list {
		name, err := odk.StringField(form, "name")
		if err != nil {
			c.Tel.ReportBroken(report_client_form_list, err, projectId)
			return nil, err
		}
		id, err := odk.NullableIDField(form, "formid")
		if err != nil {
			c.Tel.ReportBroken(report_client_form_list, err, projectId)
			return nil, err
		}
		forms[name] = id
	}

	return forms, nil
}

// FormData returns the parsed body of the form's data endpoint verbatim, it
// is usually an array of submission objects but no shape is enforced.
func (c *Client) FormData(ctx context.Context, formId odk.ID) (any, error) {
	ctx, span := tracer.Start(ctx, "client:FormData")
	defer span.End()

	raw, err := c.Get(ctx, fmt.Sprintf("/api/v1/data/%s.json", url.PathEscape(formId.String())))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch form data")
		c.Tel.ReportBroken(report_client_form_data, fmt.Errorf("fetch: %w", err), formId)
		return nil, err
	}

	data, err := odk.DecodeAny(raw)
	if err != nil {
		c.Tel.ReportBroken(report_client_form_data, err, formId)
		return nil, err
	}
	if records, ok := data.([]any); ok {
		c.Tel.ReportCount(report_client_form_data, int64(len(records)))
	}
	return data, nil
}
