// Package kobo implements odk.Provider against the KoboToolbox KPI v2 API.
//
// KPI has no project entity, assets (forms) belong directly to user accounts.
// A "project" here is therefore the owning account: Projects lists the
// usernames owning survey assets and FormList lists the surveys of one owner.
package kobo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"odk-pull/internal/odk"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("odk/kobo")

const (
	report_client_projects  = "client.projects"
	report_client_form_list = "client.form-list"
	report_client_form_data = "client.form-data"
)

const assetTypeSurvey = "survey"

// Client implements odk.Provider for KoboToolbox servers.
type Client struct {
	*odk.Connection
}

var _ odk.Provider = (*Client)(nil)

func NewClient(opts odk.Options) *Client {
	return &Client{Connection: odk.NewConnection("kobo", opts)}
}

type asset struct {
	Uid   odk.ID
	Name  string
	Owner string
}

// assets returns the survey assets visible to the configured account, in
// the order the server lists them. Failures are left to the caller to report.
func (c *Client) assets(ctx context.Context) ([]asset, error) {
	raw, err := c.Get(ctx, "/api/v2/assets.json")
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	results, err := resultsOf(raw)
	if err != nil {
		return nil, err
	}
	var list []map[string]json.RawMessage
	err = odk.Decode(results, &list)
	if err != nil {
		return nil, err
	}

	var out []asset
	for _, item := range list {
		assetType, err := odk.StringField(item, "asset_type")
		if err != nil {
			return nil, err
		}
		if assetType != assetTypeSurvey {
			continue
		}

		uid, err := odk.IDField(item, "uid")
		if err != nil {
			return nil, err
		}
		name, err := odk.StringField(item, "name")
		if err != nil {
			return nil, err
		}
		owner, err := odk.StringField(item, "owner__username")
		if err != nil {
			return nil, err
		}
		out = append(out, asset{Uid: uid, Name: name, Owner: owner})
	}
	return out, nil
}

// Projects lists the accounts owning survey assets, each owner maps to itself
// since the username is what FormList filters by.
func (c *Client) Projects(ctx context.Context) (odk.ProjectMap, error) {
	ctx, span := tracer.Start(ctx, "client:Projects")
	defer span.End()

	assets, err := c.assets(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to list assets")
		c.Tel.ReportBroken(report_client_projects, err)
		return nil, err
	}

	projects := odk.ProjectMap{}
	for _, a := range assets {
		projects[a.Owner] = odk.ID(a.Owner)
	}
	c.Tel.ReportCount(report_client_projects, int64(len(projects)))
	return projects, nil
}

// FormList lists the survey assets owned by `projectId` (an owner username)
// as asset name -> asset uid.
func (c *Client) FormList(ctx context.Context, projectId odk.ID) (odk.FormMap, error) {
	ctx, span := tracer.Start(ctx, "client:FormList")
	defer span.End()

	assets, err := c.assets(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to list assets")
		c.Tel.ReportBroken(report_client_form_list, err, projectId)
		return nil, err
	}

	forms := odk.FormMap{}
	for _, a := range assets {
		if a.Owner != projectId.String() {
			continue
		}
		forms[a.Name] = a.Uid
	}
	return forms, nil
}

// FormData returns the submissions of an asset, unwrapped from the paginated
// envelope. Only the first page the server returns is read.
func (c *Client) FormData(ctx context.Context, formId odk.ID) (any, error) {
	ctx, span := tracer.Start(ctx, "client:FormData")
	defer span.End()

	raw, err := c.Get(ctx, fmt.Sprintf("/api/v2/assets/%s/data.json", url.PathEscape(formId.String())))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch form data")
		c.Tel.ReportBroken(report_client_form_data, fmt.Errorf("fetch: %w", err), formId)
		return nil, err
	}

	results, err := resultsOf(raw)
	if err != nil {
		c.Tel.ReportBroken(report_client_form_data, err, formId)
		return nil, err
	}
	data, err := odk.DecodeAny(results)
	if err != nil {
		c.Tel.ReportBroken(report_client_form_data, err, formId)
		return nil, err
	}
	if records, ok := data.([]any); ok {
		c.Tel.ReportCount(report_client_form_data, int64(len(records)))
	}
	return data, nil
}

func resultsOf(raw json.RawMessage) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	err := odk.Decode(raw, &envelope)
	if err != nil {
		return nil, err
	}
	results, ok := envelope["results"]
	if !ok {
		return nil, odk.MissingField("results")
	}
	return results, nil
}
