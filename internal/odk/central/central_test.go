package central

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

func newTestClient(t testing.TB) *Client {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 1, "name": "Default Project", "archived": null},
			{"id": 5, "name": "Polio campaign", "archived": null}
		]`))
	})
	mux.HandleFunc("/v1/projects/5/forms", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"projectId": 5, "xmlFormId": "household_v2", "name": "Household"},
			{"projectId": 5, "xmlFormId": "untitled", "name": null}
		]`))
	})
	mux.HandleFunc("/v1/projects/5/forms/household_v2.svc/Submissions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"@odata.context": "https://central.example.org/v1/projects/5/forms/household_v2.svc/$metadata#Submissions",
			"value": [{"__id": "uuid:1", "members": 4}]
		}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewClient(odk.Options{
		Username:  "surveyor@example.org",
		Password:  "secret",
		Url:       server.URL,
		Telemetry: &telemetry.Recorder{},
	})
}

func TestSplitFormID(t *testing.T) {
	project, form, err := SplitFormID(FormID("5", "household_v2"))
	require.NoError(t, err)
	require.Equal(t, odk.ID("5"), project)
	require.Equal(t, "household_v2", form)

	for _, bad := range []odk.ID{"household_v2", "/household_v2", "5/"} {
		_, _, err := SplitFormID(bad)
		require.ErrorIs(t, err, odk.ErrMalformedID)
	}
}

func TestProjects(t *testing.T) {
	client := newTestClient(t)
	projects, err := client.Projects(context.Background())
	require.NoError(t, err)
	require.Equal(t, odk.ProjectMap{"Default Project": "1", "Polio campaign": "5"}, projects)
}

func TestFormList(t *testing.T) {
	client := newTestClient(t)
	forms, err := client.FormList(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, odk.FormMap{
		"Household": "5/household_v2",
		"untitled":  "5/untitled",
	}, forms)
}

func TestFormData(t *testing.T) {
	client := newTestClient(t)
	data, err := client.FormData(context.Background(), "5/household_v2")
	require.NoError(t, err)
	require.Equal(t, []any{
		map[string]any{"__id": "uuid:1", "members": json.Number("4")},
	}, data)

	_, err = client.FormData(context.Background(), "household_v2")
	require.ErrorIs(t, err, odk.ErrMalformedID)
}
