package kobo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"odk-pull/internal/components/telemetry"
	"odk-pull/internal/odk"
	"testing"

	"github.com/stretchr/testify/require"
)

const assetsBody = `{
	"count": 4,
	"next": null,
	"previous": null,
	"results": [
		{"uid": "aQx1", "name": "Household", "asset_type": "survey", "owner__username": "alice"},
		{"uid": "aQx2", "name": "Water points", "asset_type": "survey", "owner__username": "alice"},
		{"uid": "bLk9", "name": "Question bank", "asset_type": "block", "owner__username": "alice"},
		{"uid": "cZz3", "name": "Household", "asset_type": "survey", "owner__username": "bob"}
	]
}`

func newTestClient(t testing.TB) *Client {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/assets.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(assetsBody))
	})
	mux.HandleFunc("/api/v2/assets/aQx1/data.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 1, "next": null, "previous": null, "results": [
			{"_id": 10, "_geolocation": [-1.28, 36.81]}
		]}`))
	})
	mux.HandleFunc("/api/v2/assets/broken/data.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detail": "Not found."}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewClient(odk.Options{
		Username:  "alice",
		Password:  "secret",
		Url:       server.URL,
		Telemetry: &telemetry.Recorder{},
	})
}

func TestProjects(t *testing.T) {
	client := newTestClient(t)
	projects, err := client.Projects(context.Background())
	require.NoError(t, err)
	require.Equal(t, odk.ProjectMap{"alice": "alice", "bob": "bob"}, projects)
}

func TestFormList(t *testing.T) {
	client := newTestClient(t)
	forms, err := client.FormList(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, odk.FormMap{"Household": "aQx1", "Water points": "aQx2"}, forms)

	forms, err = client.FormList(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, forms)
}

func TestFormData(t *testing.T) {
	client := newTestClient(t)
	data, err := client.FormData(context.Background(), "aQx1")
	require.NoError(t, err)
	require.Equal(t, []any{
		map[string]any{
			"_id":          json.Number("10"),
			"_geolocation": []any{json.Number("-1.28"), json.Number("36.81")},
		},
	}, data)

	_, err = client.FormData(context.Background(), "broken")
	require.ErrorIs(t, err, odk.ErrMissingField)
}

func TestAssetFailuresReportedOnce(t *testing.T) {
	missingResults := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 0}`))
	}))
	t.Cleanup(missingResults.Close)

	unreachable := httptest.NewServer(http.NotFoundHandler())
	unreachable.Close()

	cases := []struct {
		name   string
		url    string
		call   func(c *Client) error
		err    error
		broken []string
	}{
		{
			name: "projects missing results",
			url:  missingResults.URL,
			call: func(c *Client) error {
				_, err := c.Projects(context.Background())
				return err
			},
			err:    odk.ErrMissingField,
			broken: []string{"kobo: client.projects"},
		},
		{
			name: "form list missing results",
			url:  missingResults.URL,
			call: func(c *Client) error {
				_, err := c.FormList(context.Background(), "alice")
				return err
			},
			err:    odk.ErrMissingField,
			broken: []string{"kobo: client.form-list"},
		},
		{
			name: "projects unreachable",
			url:  unreachable.URL,
			call: func(c *Client) error {
				_, err := c.Projects(context.Background())
				return err
			},
			broken: []string{"kobo: client.projects"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := &telemetry.Recorder{}
			client := NewClient(odk.Options{
				Username:  "alice",
				Password:  "secret",
				Url:       c.url,
				Telemetry: rec,
			})

			err := c.call(client)
			require.Error(t, err)
			if c.err != nil {
				require.ErrorIs(t, err, c.err)
			}
			require.Equal(t, c.broken, rec.Broken())
		})
	}
}
