package integration

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserver/internal/server/responses"
	"git.home.luguber.info/inful/docserver/internal/testutil"
)

func authedEnv(t *testing.T) *env {
	return newEnv(t, guidesFixtures(), withUsers(map[string]string{"alice": "s3cret"}))
}

func TestAuth_APICreate_WithoutSession_Returns401(t *testing.T) {
	e := authedEnv(t)

	var errResp map[string]any
	status := e.postJSON(e.docs.URL+"/api/v1/documents", responses.CreateRequest{
		Category: "guides",
		Title:    "Locked Out",
		Body:     "Should not land.",
	}, &errResp)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "auth", errResp["code"])
}

func TestAuth_SubmitPage_WithoutSession_RedirectsToLogin(t *testing.T) {
	e := authedEnv(t)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(e.docs.URL + "/submit")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login?next="))
}

func TestAuth_LoginThenSubmit_FullFlow(t *testing.T) {
	e := authedEnv(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	// Bad password never issues a session.
	resp, err := client.PostForm(e.docs.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = client.PostForm(e.docs.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"s3cret"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	base, err := url.Parse(e.docs.URL)
	require.NoError(t, err)
	require.NotEmpty(t, jar.Cookies(base))

	resp, err = client.PostForm(e.docs.URL+"/submit", url.Values{
		"category": {"guides"},
		"title":    {"Session Post"},
		"body":     {"Written while logged in."},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The submitting user is recorded against the document.
	var recent responses.RecentResponse
	status := e.getJSON(e.docs.URL+"/api/v1/submissions/recent", &recent)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, recent.Count)
	require.Equal(t, "alice", recent.Submissions[0].User)
	require.Equal(t, "session-post", recent.Submissions[0].Slug)
}

func TestAuth_BearerToken_AllowsAPICreate(t *testing.T) {
	e := authedEnv(t)

	token, _, err := e.auth.Login(t.Context(), "alice", "s3cret")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.docs.URL+"/api/v1/documents",
		strings.NewReader(`{"category":"guides","title":"Token Post","body":"Via bearer token."}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAuth_Logout_RevokesSession(t *testing.T) {
	e := authedEnv(t)

	token, _, err := e.auth.Login(t.Context(), "alice", "s3cret")
	require.NoError(t, err)
	require.NoError(t, e.auth.Logout(t.Context(), token))

	_, err = e.auth.Verify(t.Context(), token)
	require.Error(t, err)
}

func TestAuth_ReadRoutes_StayPublic(t *testing.T) {
	e := newEnv(t, []testutil.Doc{
		{Category: "guides", Slug: "1-open", Title: "Open", Body: "Readable by anyone."},
	}, withUsers(map[string]string{"alice": "s3cret"}))

	var resp responses.DocumentResponse
	status := e.getJSON(e.docs.URL+"/api/v1/documents/guides/1-open", &resp)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Open", resp.Title)
}
