// Package central implements odk.Provider against the ODK Central (GetODK)
// REST and OData APIs.
package central

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

var tracer = otel.Tracer("odk/central")

const (
	report_client_projects  = "client.projects"
	report_client_form_list = "client.form-list"
	report_client_form_data = "client.form-data"
)

// Client implements odk.Provider for ODK Central servers.
type Client struct {
	*odk.Connection
}

var _ odk.Provider = (*Client)(nil)

func NewClient(opts odk.Options) *Client {
	return &Client{Connection: odk.NewConnection("central", opts)}
}

// FormID builds the id FormList hands out, Central scopes form ids
// (xmlFormId) under a numeric project id.
func FormID(projectId odk.ID, xmlFormId string) odk.ID {
	return odk.ID(fmt.Sprintf("%s/%s", projectId, xmlFormId))
}

// SplitFormID is the inverse of FormID.
func SplitFormID(id odk.ID) (projectId odk.ID, xmlFormId string, err error) {
	project, form, ok := strings.Cut(id.String(), "/")
	if !ok || project == "" || form == "" {
		return "", "", fmt.Errorf("%w: %q is not <project id>/<xml form id>", odk.ErrMalformedID, id.String())
	}
	return odk.ID(project), form, nil
}

// Projects lists projects as project name -> project id.
func (c *Client) Projects(ctx context.Context) (odk.ProjectMap, error) {
	ctx, span := tracer.Start(ctx, "client:Projects")
	defer span.End()

	raw, err := c.Get(ctx, "/v1/projects")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch projects")
		c.Tel.ReportBroken(report_client_projects, fmt.Errorf("fetch: %w", err))
		return nil, err
	}

	var list []map[string]json.RawMessage
	err = odk.Decode(raw, &list)
	if err != nil {
		c.Tel.ReportBroken(report_client_projects, err)
		return nil, err
	}

	projects := odk.ProjectMap{}
	for _, project := range list {
		name, err := odk.StringField(project, "name")
		if err != nil {
			c.Tel.ReportBroken(report_client_projects, err)
			return nil, err
		}
		id, err := odk.IDField(project, "id")
		if err != nil {
			c.Tel.ReportBroken(report_client_projects, err)
			return nil, err
		}
		projects[name] = id
	}

	c.Tel.ReportCount(report_client_projects, int64(len(projects)))
	return projects, nil
}

// FormList lists the forms of a project as form name -> FormID. Forms
// without a title fall back to their xmlFormId.
func (c *Client) FormList(ctx context.Context, projectId odk.ID) (odk.FormMap, error) {
	ctx, span := tracer.Start(ctx, "client:FormList")
	defer span.End()

	raw, err := c.Get(ctx, fmt.Sprintf("/v1/projects/%s/forms", url.PathEscape(projectId.String())))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch forms")
		c.Tel.ReportBroken(report_client_form_list, fmt.Errorf("fetch: %w", err), projectId)
		return nil, err
	}

	var list []map[string]json.RawMessage
	err = odk.Decode(raw, &list)
	if err != nil {
		c.Tel.ReportBroken(report_client_form_list, err, projectId)
		return nil, err
	}

	forms := odk.FormMap{}
	for _, form := range list {
		xmlFormId, err := odk.StringField(form, "xmlFormId")
		if err != nil {
			c.Tel.ReportBroken(report_client_form_list, err, projectId)
			return nil, err
		}
		name := xmlFormId
		if raw, ok := form["name"]; ok {
			var title *string
			if json.Unmarshal(raw, &title) == nil && title != nil && *title != "" {
				name = *title
			}
		}
		forms[name] = FormID(projectId, xmlFormId)
	}

	return forms, nil
}

// FormData returns the submissions of a form (a FormID) from its OData feed,
// unwrapped from the `value` envelope.
func (c *Client) FormData(ctx context.Context, formId odk.ID) (any, error) {
	ctx, span := tracer.Start(ctx, "client:FormData")
	defer span.End()

	projectId, xmlFormId, err := SplitFormID(formId)
	if err != nil {
		span.SetStatus(codes.Error, "malformed form id")
		c.Tel.ReportWarning(report_client_form_data, err)
		return nil, err
	}

	raw, err := c.Get(ctx, fmt.Sprintf(
		"/v1/projects/%s/forms/%s.svc/Submissions",
		url.PathEscape(projectId.String()),
		url.PathEscape(xmlFormId),
	))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch submissions")
		c.Tel.ReportBroken(report_client_form_data, fmt.Errorf("fetch: %w", err), formId)
		return nil, err
	}

	var envelope map[string]json.RawMessage
	err = odk.Decode(raw, &envelope)
	if err != nil {
		c.Tel.ReportBroken(report_client_form_data, err, formId)
		return nil, err
	}
	value, ok := envelope["value"]
	if !ok {
		err := odk.MissingField("value")
		c.Tel.ReportBroken(report_client_form_data, err, formId)
		return nil, err
	}

	data, err := odk.DecodeAny(value)
	if err != nil {
		c.Tel.ReportBroken(report_client_form_data, err, formId)
		return nil, err
	}
	if records, ok := data.([]any); ok {
		c.Tel.ReportCount(report_client_form_data, int64(len(records)))
	}
	return data, nil
}
