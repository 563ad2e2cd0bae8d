package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := &Client{
		APIBaseURL: srv.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	return client, srv
}

var testCreds = Credentials{AccessToken: "token-123"}

func TestPerformActionSendsBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"data":{"id":"1","username":"tester"}}`))
	})
	defer srv.Close()

	user, resp, err := client.VerifyIdentity(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "tester", user.Username)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPerformActionRequiresToken(t *testing.T) {
	client := &Client{APIBaseURL: "http://unused", HTTPClient: http.DefaultClient}

	_, err := client.PerformAction(context.Background(), Credentials{}, http.MethodGet, "http://unused", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestLikePostsJSONBody(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"data":{"liked":true}}`))
	})
	defer srv.Close()

	result, _, err := client.Like(context.Background(), testCreds, "user-1", "tweet-9")
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, "/users/user-1/likes", gotPath)
	assert.Equal(t, map[string]string{"tweet_id": "tweet-9"}, gotBody)
}

func TestErrorListBeatsOKStatus(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"title":"Forbidden","detail":"not allowed to like"}]}`))
	})
	defer srv.Close()

	_, _, err := client.Like(context.Background(), testCreds, "user-1", "tweet-9")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUpstreamError, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "not allowed to like")
}

func TestNonSuccessStatusIsUpstreamError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"title":"Too Many Requests"}`))
	})
	defer srv.Close()

	_, _, err := client.Like(context.Background(), testCreds, "user-1", "tweet-9")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUpstreamError, apperr.CodeOf(err))
}

func TestUnparsableBodyIsUpstreamError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	})
	defer srv.Close()

	_, err := client.PerformAction(context.Background(), testCreds, http.MethodGet, client.VerifyIdentityURL(), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUpstreamError, apperr.CodeOf(err))
}

func TestListLikedEmptyDataMeansEmptyList(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	})
	defer srv.Close()

	tweets, resp, err := client.ListLiked(context.Background(), testCreds, "user-1")
	require.NoError(t, err)
	assert.Empty(t, tweets)
	assert.NotNil(t, resp)
}

func TestListRetweetersDecodesUsers(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tweets/tweet-9/retweeted_by", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"u1","username":"a"},{"id":"u2","username":"b"}]}`))
	})
	defer srv.Close()

	users, _, err := client.ListRetweeters(context.Background(), testCreds, "tweet-9")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[1].ID)
}

func TestPostTweetReturnsCreatedID(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"tweet-77","text":"gm"}}`))
	})
	defer srv.Close()

	tweet, _, err := client.PostTweet(context.Background(), testCreds, "gm")
	require.NoError(t, err)
	assert.Equal(t, "tweet-77", tweet.ID)
}

func TestNewClientFromEnvUsesBaseURL(t *testing.T) {
	t.Setenv("TWITTER_API_BASE_URL", "https://proxy.example.com/2/")

	client := NewClientFromEnv()
	assert.Equal(t, "https://proxy.example.com/2", client.APIBaseURL)
	assert.Equal(t, "https://proxy.example.com/2/users/u1/likes", client.LikeURL("u1"))
}
