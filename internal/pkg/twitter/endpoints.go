package twitter

import (
	"context"
	"fmt"
	"net/http"
)

// Endpoint builders. Verify wrappers below validate the typed response shape
// once at this boundary so downstream code never touches raw payloads.

func (c *Client) VerifyIdentityURL() string {
	return c.APIBaseURL + "/users/me"
}

func (c *Client) LookupUserByNameURL(username string) string {
	return fmt.Sprintf("%s/users/by/username/%s", c.APIBaseURL, username)
}

func (c *Client) PostTweetURL() string {
	return c.APIBaseURL + "/tweets"
}

func (c *Client) RetweetURL(userID string) string {
	return fmt.Sprintf("%s/users/%s/retweets", c.APIBaseURL, userID)
}

func (c *Client) LikeURL(userID string) string {
	return fmt.Sprintf("%s/users/%s/likes", c.APIBaseURL, userID)
}

func (c *Client) BookmarkURL(userID string) string {
	return fmt.Sprintf("%s/users/%s/bookmarks", c.APIBaseURL, userID)
}

func (c *Client) FollowURL(userID string) string {
	return fmt.Sprintf("%s/users/%s/following", c.APIBaseURL, userID)
}

func (c *Client) ListRetweetersURL(tweetID string) string {
	return fmt.Sprintf("%s/tweets/%s/retweeted_by", c.APIBaseURL, tweetID)
}

func (c *Client) ListFollowedURL(userID string) string {
	return fmt.Sprintf("%s/users/%s/following", c.APIBaseURL, userID)
}

func (c *Client) ListLikedURL(userID string) string {
	return fmt.Sprintf("%s/users/%s/liked_tweets", c.APIBaseURL, userID)
}

func (c *Client) ListBookmarkedURL(userID string) string {
	return fmt.Sprintf("%s/users/%s/bookmarks", c.APIBaseURL, userID)
}

func (c *Client) ListOwnTweetsURL(userID string) string {
	return fmt.Sprintf("%s/users/%s/tweets", c.APIBaseURL, userID)
}

// VerifyIdentity resolves the token's own account.
func (c *Client) VerifyIdentity(ctx context.Context, creds Credentials) (*User, *Response, error) {
	resp, err := c.PerformAction(ctx, creds, http.MethodGet, c.VerifyIdentityURL(), nil)
	if err != nil {
		return nil, nil, err
	}
	var user User
	if err := decodeData(resp, &user); err != nil {
		return nil, resp, err
	}
	return &user, resp, nil
}

// LookupUserByName resolves a handle to a provider user id.
func (c *Client) LookupUserByName(ctx context.Context, creds Credentials, username string) (*User, *Response, error) {
	resp, err := c.PerformAction(ctx, creds, http.MethodGet, c.LookupUserByNameURL(username), nil)
	if err != nil {
		return nil, nil, err
	}
	var user User
	if err := decodeData(resp, &user); err != nil {
		return nil, resp, err
	}
	return &user, resp, nil
}

// PostTweet publishes a new tweet on behalf of the actor.
func (c *Client) PostTweet(ctx context.Context, creds Credentials, text string) (*Tweet, *Response, error) {
	resp, err := c.PerformAction(ctx, creds, http.MethodPost, c.PostTweetURL(), map[string]string{"text": text})
	if err != nil {
		return nil, nil, err
	}
	var tweet Tweet
	if err := decodeData(resp, &tweet); err != nil {
		return nil, resp, err
	}
	return &tweet, resp, nil
}

// Retweet retweets tweetID as actor userID.
func (c *Client) Retweet(ctx context.Context, creds Credentials, userID, tweetID string) (*RetweetResult, *Response, error) {
	resp, err := c.PerformAction(ctx, creds, http.MethodPost, c.RetweetURL(userID), map[string]string{"tweet_id": tweetID})
	if err != nil {
		return nil, nil, err
	}
	var result RetweetResult
	if err := decodeData(resp, &result); err != nil {
		return nil, resp, err
	}
	return &result, resp, nil
}

// Like likes tweetID as actor userID.
func (c *Client) Like(ctx context.Context, creds Credentials, userID, tweetID string) (*LikeResult, *Response, error) {
	resp, err := c.PerformAction(ctx, creds, http.MethodPost, c.LikeURL(userID), map[string]string{"tweet_id": tweetID})
	if err != nil {
		return nil, nil, err
	}
	var result LikeResult
	if err := decodeData(resp, &result); err != nil {
		return nil, resp, err
	}
	return &result, resp, nil
}

// Bookmark bookmarks tweetID as actor userID.
func (c *Client) Bookmark(ctx context.Context, creds Credentials, userID, tweetID string) (*BookmarkResult, *Response, error) {
	resp, err := c.PerformAction(ctx, creds, http.MethodPost, c.BookmarkURL(userID), map[string]string{"tweet_id": tweetID})
	if err != nil {
		return nil, nil, err
	}
	var result BookmarkResult
	if err := decodeData(resp, &result); err != nil {
		return nil, resp, err
	}
	return &result, resp, nil
}

// Follow follows targetUserID as actor userID.
func (c *Client) Follow(ctx context.Context, creds Credentials, userID, targetUserID string) (*FollowResult, *Response, error) {
	resp, err := c.PerformAction(ctx, creds, http.MethodPost, c.FollowURL(userID), map[string]string{"target_user_id": targetUserID})
	if err != nil {
		return nil, nil, err
	}
	var result FollowResult
	if err := decodeData(resp, &result); err != nil {
		return nil, resp, err
	}
	return &result, resp, nil
}

// ListRetweeters returns the accounts that retweeted tweetID.
func (c *Client) ListRetweeters(ctx context.Context, creds Credentials, tweetID string) ([]User, *Response, error) {
	return c.listUsers(ctx, creds, c.ListRetweetersURL(tweetID))
}

// ListFollowed returns the accounts userID follows.
func (c *Client) ListFollowed(ctx context.Context, creds Credentials, userID string) ([]User, *Response, error) {
	return c.listUsers(ctx, creds, c.ListFollowedURL(userID))
}

// ListLiked returns the tweets userID liked.
func (c *Client) ListLiked(ctx context.Context, creds Credentials, userID string) ([]Tweet, *Response, error) {
	return c.listTweets(ctx, creds, c.ListLikedURL(userID))
}

// ListBookmarked returns the tweets userID bookmarked.
func (c *Client) ListBookmarked(ctx context.Context, creds Credentials, userID string) ([]Tweet, *Response, error) {
	return c.listTweets(ctx, creds, c.ListBookmarkedURL(userID))
}

// ListOwnTweets returns the tweets userID posted.
func (c *Client) ListOwnTweets(ctx context.Context, creds Credentials, userID string) ([]Tweet, *Response, error) {
	return c.listTweets(ctx, creds, c.ListOwnTweetsURL(userID))
}

func (c *Client) listUsers(ctx context.Context, creds Credentials, url string) ([]User, *Response, error) {
	resp, err := c.PerformAction(ctx, creds, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	// An absent data key means an empty list, not a malformed response.
	if len(resp.Envelope.Data) == 0 {
		return nil, resp, nil
	}
	var users []User
	if err := decodeData(resp, &users); err != nil {
		return nil, resp, err
	}
	return users, resp, nil
}

func (c *Client) listTweets(ctx context.Context, creds Credentials, url string) ([]Tweet, *Response, error) {
	resp, err := c.PerformAction(ctx, creds, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	if len(resp.Envelope.Data) == 0 {
		return nil, resp, nil
	}
	var tweets []Tweet
	if err := decodeData(resp, &tweets); err != nil {
		return nil, resp, err
	}
	return tweets, resp, nil
}
