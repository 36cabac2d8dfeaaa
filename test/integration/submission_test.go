package integration

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserver/internal/server/responses"
)

func TestSubmission_CreateAndResolveRoundTrip(t *testing.T) {
	e := newEnv(t, guidesFixtures())

	var created responses.CreateResponse
	status := e.postJSON(e.docs.URL+"/api/v1/documents", responses.CreateRequest{
		Category: "guides",
		Title:    "Backup Strategy",
		Body:     "# Backup\n\nCopy everything twice.",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "guides", created.Category)
	require.Equal(t, "backup-strategy", created.Slug)
	require.False(t, created.Renamed)
	require.Equal(t, "/guides/backup-strategy", created.URL)

	var doc responses.DocumentResponse
	status = e.getJSON(e.docs.URL+"/api/v1/documents/guides/backup-strategy", &doc)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Backup Strategy", doc.Title)
	require.Contains(t, doc.Body, "Copy everything twice.")
}

func TestSubmission_DuplicateTitle_MovesToSuffixedSlug(t *testing.T) {
	e := newEnv(t, guidesFixtures())

	req := responses.CreateRequest{Category: "guides", Title: "Demo", Body: "First."}
	var first responses.CreateResponse
	require.Equal(t, http.StatusCreated, e.postJSON(e.docs.URL+"/api/v1/documents", req, &first))
	require.Equal(t, "demo", first.Slug)
	require.False(t, first.Renamed)

	req.Body = "Second."
	var second responses.CreateResponse
	require.Equal(t, http.StatusCreated, e.postJSON(e.docs.URL+"/api/v1/documents", req, &second))
	require.Equal(t, "demo-1", second.Slug)
	require.True(t, second.Renamed)

	// Both documents survive, each with its own body.
	var d1, d2 responses.DocumentResponse
	e.getJSON(e.docs.URL+"/api/v1/documents/guides/demo", &d1)
	e.getJSON(e.docs.URL+"/api/v1/documents/guides/demo-1", &d2)
	require.Contains(t, d1.Body, "First.")
	require.Contains(t, d2.Body, "Second.")
}

func TestSubmission_IntoSubcategory(t *testing.T) {
	e := newEnv(t, guidesFixtures())

	var created responses.CreateResponse
	status := e.postJSON(e.docs.URL+"/api/v1/documents", responses.CreateRequest{
		Category:    "concepts",
		Subcategory: "java",
		Title:       "Generics",
		Body:        "Type parameters.",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "java", created.Subcategory)
	require.Equal(t, "/concepts/java/generics", created.URL)
}

func TestSubmission_MissingTitle_Returns400(t *testing.T) {
	e := newEnv(t, guidesFixtures())

	var errResp map[string]any
	status := e.postJSON(e.docs.URL+"/api/v1/documents", responses.CreateRequest{
		Category: "guides",
		Body:     "No title here.",
	}, &errResp)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation", errResp["code"])
}

func TestSubmission_UnknownCategory_Rejected(t *testing.T) {
	e := newEnv(t, guidesFixtures())

	var errResp map[string]any
	status := e.postJSON(e.docs.URL+"/api/v1/documents", responses.CreateRequest{
		Category: "secrets",
		Title:    "Hidden",
		Body:     "Nope.",
	}, &errResp)
	require.Equal(t, http.StatusBadRequest, status)
	require.NotEmpty(t, errResp["error"])
}

func TestSubmission_RecordedInJournal(t *testing.T) {
	e := newEnv(t, guidesFixtures())

	for _, title := range []string{"First Note", "Second Note"} {
		var created responses.CreateResponse
		status := e.postJSON(e.docs.URL+"/api/v1/documents", responses.CreateRequest{
			Category: "guides",
			Title:    title,
			Body:     "Body.",
		}, &created)
		require.Equal(t, http.StatusCreated, status)
	}

	var recent responses.RecentResponse
	status := e.getJSON(e.docs.URL+"/api/v1/submissions/recent", &recent)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, recent.Count)
	// Newest first.
	require.Equal(t, "second-note", recent.Submissions[0].Slug)
	require.Equal(t, "first-note", recent.Submissions[1].Slug)
}

func TestSubmission_HTMLForm(t *testing.T) {
	e := newEnv(t, guidesFixtures())

	form := url.Values{
		"category": {"guides"},
		"title":    {"Form Post"},
		"body":     {"Posted from the form."},
	}
	resp, err := http.PostForm(e.docs.URL+"/submit", form) // #nosec G107
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc responses.DocumentResponse
	status := e.getJSON(e.docs.URL+"/api/v1/documents/guides/form-post", &doc)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Form Post", doc.Title)
}
