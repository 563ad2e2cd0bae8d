package verify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/keylock"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/ledger"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/twitter"
)

// ActionClient is the provider surface the orchestration needs. The real
// implementation is twitter.Client; tests substitute a counting fake.
type ActionClient interface {
	PostTweet(ctx context.Context, creds twitter.Credentials, text string) (*twitter.Tweet, *twitter.Response, error)
	Retweet(ctx context.Context, creds twitter.Credentials, userID, tweetID string) (*twitter.RetweetResult, *twitter.Response, error)
	Like(ctx context.Context, creds twitter.Credentials, userID, tweetID string) (*twitter.LikeResult, *twitter.Response, error)
	Bookmark(ctx context.Context, creds twitter.Credentials, userID, tweetID string) (*twitter.BookmarkResult, *twitter.Response, error)
	Follow(ctx context.Context, creds twitter.Credentials, userID, targetUserID string) (*twitter.FollowResult, *twitter.Response, error)
	ListRetweeters(ctx context.Context, creds twitter.Credentials, tweetID string) ([]twitter.User, *twitter.Response, error)
	ListFollowed(ctx context.Context, creds twitter.Credentials, userID string) ([]twitter.User, *twitter.Response, error)
	ListLiked(ctx context.Context, creds twitter.Credentials, userID string) ([]twitter.Tweet, *twitter.Response, error)
	ListBookmarked(ctx context.Context, creds twitter.Credentials, userID string) ([]twitter.Tweet, *twitter.Response, error)
	ListOwnTweets(ctx context.Context, creds twitter.Credentials, userID string) ([]twitter.Tweet, *twitter.Response, error)

	PostTweetURL() string
	RetweetURL(userID string) string
	LikeURL(userID string) string
	BookmarkURL(userID string) string
	FollowURL(userID string) string
	ListRetweetersURL(tweetID string) string
	ListFollowedURL(userID string) string
	ListLikedURL(userID string) string
	ListBookmarkedURL(userID string) string
	ListOwnTweetsURL(userID string) string
}

// Result is the outcome of one verification request.
type Result struct {
	ActionType string `json:"action_type"`
	TargetID   string `json:"target_id,omitempty"`
	Verified   bool   `json:"verified"`
	// Cached is true when the ledger satisfied the request without a
	// provider round trip.
	Cached  bool   `json:"cached"`
	Message string `json:"message,omitempty"`
}

// Service runs the check-then-act discipline: consult the ledger first, call
// the provider only on a stale or missing record, then write the outcome
// back. Same-key requests are serialized so concurrent re-checks cannot race
// each other's writes.
type Service struct {
	client ActionClient
	ledger *ledger.Service
	locks  *keylock.KeyLock
}

// NewService creates a verification service.
func NewService(client ActionClient, ledgerSvc *ledger.Service) *Service {
	return &Service{
		client: client,
		ledger: ledgerSvc,
		locks:  keylock.New(),
	}
}

func lockKey(actorID, targetID, actionType string) string {
	return strings.Join([]string{actorID, targetID, actionType}, "|")
}

func jsonPayload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func cachedResult(actionType string, check *ledger.CheckResult) *Result {
	return &Result{
		ActionType: actionType,
		TargetID:   check.TargetID,
		Verified:   true,
		Cached:     true,
		Message:    check.Message,
	}
}

// Like ensures the actor has liked the tweet, performing the provider call
// only when no fresh record exists.
func (s *Service) Like(ctx context.Context, creds twitter.Credentials, actorID, tweetID string) (*Result, error) {
	return s.performTargeted(ctx, models.ActionTypeLike, actorID, tweetID,
		s.client.LikeURL(actorID), jsonPayload(map[string]string{"tweet_id": tweetID}),
		func() (*twitter.Response, bool, error) {
			result, resp, err := s.client.Like(ctx, creds, actorID, tweetID)
			if err != nil {
				return resp, false, err
			}
			return resp, result.Liked, nil
		})
}

// Retweet ensures the actor has retweeted the tweet.
func (s *Service) Retweet(ctx context.Context, creds twitter.Credentials, actorID, tweetID string) (*Result, error) {
	return s.performTargeted(ctx, models.ActionTypeRetweet, actorID, tweetID,
		s.client.RetweetURL(actorID), jsonPayload(map[string]string{"tweet_id": tweetID}),
		func() (*twitter.Response, bool, error) {
			result, resp, err := s.client.Retweet(ctx, creds, actorID, tweetID)
			if err != nil {
				return resp, false, err
			}
			return resp, result.Retweeted, nil
		})
}

// Bookmark ensures the actor has bookmarked the tweet.
func (s *Service) Bookmark(ctx context.Context, creds twitter.Credentials, actorID, tweetID string) (*Result, error) {
	return s.performTargeted(ctx, models.ActionTypeBookmark, actorID, tweetID,
		s.client.BookmarkURL(actorID), jsonPayload(map[string]string{"tweet_id": tweetID}),
		func() (*twitter.Response, bool, error) {
			result, resp, err := s.client.Bookmark(ctx, creds, actorID, tweetID)
			if err != nil {
				return resp, false, err
			}
			return resp, result.Bookmarked, nil
		})
}

// Follow ensures the actor follows the target account. A pending follow
// (protected account) counts as performed.
func (s *Service) Follow(ctx context.Context, creds twitter.Credentials, actorID, targetUserID string) (*Result, error) {
	return s.performTargeted(ctx, models.ActionTypeFollow, actorID, targetUserID,
		s.client.FollowURL(actorID), jsonPayload(map[string]string{"target_user_id": targetUserID}),
		func() (*twitter.Response, bool, error) {
			result, resp, err := s.client.Follow(ctx, creds, actorID, targetUserID)
			if err != nil {
				return resp, false, err
			}
			return resp, result.Following || result.PendingFollow, nil
		})
}

// Tweet posts a campaign tweet unless a fresh one is already recorded. The
// idempotency key is per action type; the created tweet id becomes the
// record's target.
func (s *Service) Tweet(ctx context.Context, creds twitter.Credentials, actorID, text string) (*Result, error) {
	unlock := s.locks.Lock(lockKey(actorID, "", models.ActionTypeTweet))
	defer unlock()

	check, err := s.ledger.CheckInteraction(actorID, models.ActionTypeTweet, "")
	if err != nil {
		return nil, err
	}
	if check.Status {
		return cachedResult(models.ActionTypeTweet, check), nil
	}

	endpoint := s.client.PostTweetURL()
	payload := jsonPayload(map[string]string{"text": text})
	tweet, resp, err := s.client.PostTweet(ctx, creds, text)
	if err != nil {
		s.recordFailure(models.ActionTypeTweet, actorID, check.TargetID, endpoint, payload, err)
		return nil, err
	}

	if err := s.ledger.Record(ledger.RecordInput{
		ActorID:        actorID,
		TargetID:       tweet.ID,
		ActionType:     models.ActionTypeTweet,
		EndpointURL:    endpoint,
		RequestPayload: payload,
		ResponseText:   string(resp.Body),
	}); err != nil {
		return nil, err
	}

	return &Result{ActionType: models.ActionTypeTweet, TargetID: tweet.ID, Verified: true}, nil
}

// performTargeted is the shared write-action path for actions with an
// explicit target.
func (s *Service) performTargeted(
	ctx context.Context,
	actionType, actorID, targetID, endpoint, payload string,
	call func() (*twitter.Response, bool, error),
) (*Result, error) {
	_ = ctx
	if actorID == "" || targetID == "" {
		return nil, apperr.InvalidInput("actor id and target id are required")
	}

	unlock := s.locks.Lock(lockKey(actorID, targetID, actionType))
	defer unlock()

	check, err := s.ledger.CheckInteraction(actorID, actionType, targetID)
	if err != nil {
		return nil, err
	}
	if check.Status {
		return cachedResult(actionType, check), nil
	}

	resp, done, err := call()
	if err != nil {
		s.recordFailure(actionType, actorID, targetID, endpoint, payload, err)
		return nil, err
	}

	if err := s.ledger.Record(ledger.RecordInput{
		ActorID:        actorID,
		TargetID:       targetID,
		ActionType:     actionType,
		EndpointURL:    endpoint,
		RequestPayload: payload,
		ResponseText:   string(resp.Body),
	}); err != nil {
		return nil, err
	}

	return &Result{ActionType: actionType, TargetID: targetID, Verified: done}, nil
}

// recordFailure persists a failed attempt. The record write error, if any, is
// secondary and must not mask the upstream failure.
func (s *Service) recordFailure(actionType, actorID, targetID, endpoint, payload string, cause error) {
	_ = s.ledger.Record(ledger.RecordInput{
		ActorID:        actorID,
		TargetID:       targetID,
		ActionType:     actionType,
		EndpointURL:    endpoint,
		RequestPayload: payload,
		ErrorText:      cause.Error(),
	})
}
