package verify

import (
	"context"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/ledger"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/twitter"
)

// Read-only check variants. Each scans the relevant provider list once and
// records a successful sighting under the check action type; a miss is
// audited but leaves no current-state record, so the next request re-checks.

// CheckIfLiked verifies that the actor's liked tweets contain tweetID.
func (s *Service) CheckIfLiked(ctx context.Context, creds twitter.Credentials, actorID, tweetID string) (*Result, error) {
	return s.performCheck(models.ActionTypeCheckLiked, actorID, tweetID, s.client.ListLikedURL(actorID),
		func() (*twitter.Response, bool, error) {
			tweets, resp, err := s.client.ListLiked(ctx, creds, actorID)
			if err != nil {
				return resp, false, err
			}
			return resp, containsTweet(tweets, tweetID), nil
		})
}

// CheckIfRetweeted verifies that the tweet's retweeters contain the actor.
func (s *Service) CheckIfRetweeted(ctx context.Context, creds twitter.Credentials, actorID, tweetID string) (*Result, error) {
	return s.performCheck(models.ActionTypeCheckRetweeted, actorID, tweetID, s.client.ListRetweetersURL(tweetID),
		func() (*twitter.Response, bool, error) {
			users, resp, err := s.client.ListRetweeters(ctx, creds, tweetID)
			if err != nil {
				return resp, false, err
			}
			return resp, containsUser(users, actorID), nil
		})
}

// CheckIfFollowed verifies that the actor follows targetUserID.
func (s *Service) CheckIfFollowed(ctx context.Context, creds twitter.Credentials, actorID, targetUserID string) (*Result, error) {
	return s.performCheck(models.ActionTypeCheckFollowed, actorID, targetUserID, s.client.ListFollowedURL(actorID),
		func() (*twitter.Response, bool, error) {
			users, resp, err := s.client.ListFollowed(ctx, creds, actorID)
			if err != nil {
				return resp, false, err
			}
			return resp, containsUser(users, targetUserID), nil
		})
}

// CheckIfBookmarked verifies that the actor's bookmarks contain tweetID.
func (s *Service) CheckIfBookmarked(ctx context.Context, creds twitter.Credentials, actorID, tweetID string) (*Result, error) {
	return s.performCheck(models.ActionTypeCheckBookmarked, actorID, tweetID, s.client.ListBookmarkedURL(actorID),
		func() (*twitter.Response, bool, error) {
			tweets, resp, err := s.client.ListBookmarked(ctx, creds, actorID)
			if err != nil {
				return resp, false, err
			}
			return resp, containsTweet(tweets, tweetID), nil
		})
}

// CheckIfTweeted verifies that the actor's own timeline contains tweetID.
func (s *Service) CheckIfTweeted(ctx context.Context, creds twitter.Credentials, actorID, tweetID string) (*Result, error) {
	return s.performCheck(models.ActionTypeCheckTweeted, actorID, tweetID, s.client.ListOwnTweetsURL(actorID),
		func() (*twitter.Response, bool, error) {
			tweets, resp, err := s.client.ListOwnTweets(ctx, creds, actorID)
			if err != nil {
				return resp, false, err
			}
			return resp, containsTweet(tweets, tweetID), nil
		})
}

func (s *Service) performCheck(
	actionType, actorID, targetID, endpoint string,
	call func() (*twitter.Response, bool, error),
) (*Result, error) {
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

	resp, found, err := call()
	if err != nil {
		s.recordFailure(actionType, actorID, targetID, endpoint, "", err)
		return nil, err
	}

	if !found {
		// Audit the attempt without a target so no current-state record is
		// written; the actor may complete the action and re-check.
		_ = s.ledger.Record(ledger.RecordInput{
			ActorID:      actorID,
			ActionType:   actionType,
			EndpointURL:  endpoint,
			ResponseText: string(resp.Body),
		})
		return &Result{ActionType: actionType, TargetID: targetID, Verified: false, Message: "interaction not found at provider"}, nil
	}

	if err := s.ledger.Record(ledger.RecordInput{
		ActorID:      actorID,
		TargetID:     targetID,
		ActionType:   actionType,
		EndpointURL:  endpoint,
		ResponseText: string(resp.Body),
	}); err != nil {
		return nil, err
	}

	return &Result{ActionType: actionType, TargetID: targetID, Verified: true}, nil
}

func containsUser(users []twitter.User, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func containsTweet(tweets []twitter.Tweet, id string) bool {
	for _, t := range tweets {
		if t.ID == id {
			return true
		}
	}
	return false
}
