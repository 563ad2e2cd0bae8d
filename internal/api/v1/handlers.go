package apiv1

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"github.com/MarvinHoffmann/DropGate/app/repository"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/airdrop"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/eligibility"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/env"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/ledger"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/referral"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/twitter"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/verify"
)

// APIServer wires the service layer to the JSON API.
type APIServer struct {
	verify      *verify.Service
	ledger      *ledger.Service
	referral    *referral.Service
	eligibility *eligibility.Service
	airdrop     *airdrop.Service

	caps            referral.Caps
	requiredActions []string
	validate        *validator.Validate
}

// NewAPIServer builds the server from the global repositories and
// environment-configured external clients.
func NewAPIServer() *APIServer {
	repos := repository.GetGlobalRepositories()
	caps := referral.CapsFromEnv()

	ledgerSvc := ledger.NewServiceFromRepositories(repos)

	return &APIServer{
		verify:      verify.NewService(twitter.NewClientFromEnv(), ledgerSvc),
		ledger:      ledgerSvc,
		referral:    referral.NewServiceFromRepositories(repos),
		eligibility: eligibility.NewService(repos.UserAccount, eligibility.NewClientFromEnv()),
		airdrop: airdrop.NewService(
			repos.AirdropClaim,
			repos.PromotionCode,
			repos.UserAccount,
			airdrop.NewClientFromEnv(),
			caps,
		),
		caps:            caps,
		requiredActions: requiredActionsFromEnv(),
		validate:        validator.New(),
	}
}

// NewAPIServerWithServices is the injection constructor used by tests.
func NewAPIServerWithServices(
	verifySvc *verify.Service,
	ledgerSvc *ledger.Service,
	referralSvc *referral.Service,
	eligibilitySvc *eligibility.Service,
	airdropSvc *airdrop.Service,
	caps referral.Caps,
	requiredActions []string,
) *APIServer {
	return &APIServer{
		verify:          verifySvc,
		ledger:          ledgerSvc,
		referral:        referralSvc,
		eligibility:     eligibilitySvc,
		airdrop:         airdropSvc,
		caps:            caps,
		requiredActions: requiredActions,
		validate:        validator.New(),
	}
}

func requiredActionsFromEnv() []string {
	raw := env.GetEnv("REQUIRED_ACTION_TYPES", "follow,like,retweet,tweet")
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// renderError maps stable service error codes onto HTTP statuses. Unknown
// errors stay opaque 500s so internals never leak.
func renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidInput:
		status = fiber.StatusBadRequest
	case apperr.CodeNotFound:
		status = fiber.StatusNotFound
	case apperr.CodeStateConflict, apperr.CodeInteractionCheck:
		status = fiber.StatusConflict
	case apperr.CodeUpstreamError:
		status = fiber.StatusBadGateway
	case apperr.CodeStorageUnavailable:
		status = fiber.StatusServiceUnavailable
	}

	message := "internal server error"
	code := 0
	var ae *apperr.Error
	if errors.As(err, &ae) {
		code = ae.Code
		message = ae.Message
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   true,
		"code":    code,
		"message": message,
	})
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
}

type verifyRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
	ActorID     string `json:"actor_id" validate:"required"`
	TargetID    string `json:"target_id"`
	Text        string `json:"text"`
}

// PostVerifyAction performs (or confirms) a social action. The :action route
// parameter selects like, retweet, bookmark, follow or tweet.
func (s *APIServer) PostVerifyAction(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.InvalidInput("unparsable request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return renderError(c, apperr.InvalidInput(err.Error()))
	}

	creds := twitter.Credentials{AccessToken: req.AccessToken}
	ctx := c.UserContext()

	var (
		result *verify.Result
		err    error
	)
	switch c.Params("action") {
	case models.ActionTypeLike:
		result, err = s.verify.Like(ctx, creds, req.ActorID, req.TargetID)
	case models.ActionTypeRetweet:
		result, err = s.verify.Retweet(ctx, creds, req.ActorID, req.TargetID)
	case models.ActionTypeBookmark:
		result, err = s.verify.Bookmark(ctx, creds, req.ActorID, req.TargetID)
	case models.ActionTypeFollow:
		result, err = s.verify.Follow(ctx, creds, req.ActorID, req.TargetID)
	case models.ActionTypeTweet:
		if strings.TrimSpace(req.Text) == "" {
			return renderError(c, apperr.InvalidInput("text is required for tweet"))
		}
		result, err = s.verify.Tweet(ctx, creds, req.ActorID, req.Text)
	default:
		return renderError(c, apperr.InvalidInput("unknown action type"))
	}
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// PostCheckAction runs the read-only variant: scan the provider list and
// record a sighting without ever performing the action.
func (s *APIServer) PostCheckAction(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.InvalidInput("unparsable request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return renderError(c, apperr.InvalidInput(err.Error()))
	}

	creds := twitter.Credentials{AccessToken: req.AccessToken}
	ctx := c.UserContext()

	var (
		result *verify.Result
		err    error
	)
	switch c.Params("action") {
	case models.ActionTypeLike:
		result, err = s.verify.CheckIfLiked(ctx, creds, req.ActorID, req.TargetID)
	case models.ActionTypeRetweet:
		result, err = s.verify.CheckIfRetweeted(ctx, creds, req.ActorID, req.TargetID)
	case models.ActionTypeFollow:
		result, err = s.verify.CheckIfFollowed(ctx, creds, req.ActorID, req.TargetID)
	case models.ActionTypeBookmark:
		result, err = s.verify.CheckIfBookmarked(ctx, creds, req.ActorID, req.TargetID)
	case models.ActionTypeTweet:
		result, err = s.verify.CheckIfTweeted(ctx, creds, req.ActorID, req.TargetID)
	default:
		return renderError(c, apperr.InvalidInput("unknown action type"))
	}
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetInteractionStatus answers the idempotency question for one key without
// touching the provider.
func (s *APIServer) GetInteractionStatus(c *fiber.Ctx) error {
	actorID := c.Query("actor_id")
	actionType := c.Query("action_type")
	targetID := c.Query("target_id")

	result, err := s.ledger.CheckInteraction(actorID, actionType, targetID)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetInteractionComplete reports whether the actor finished every required
// action type at least once.
func (s *APIServer) GetInteractionComplete(c *fiber.Ctx) error {
	actorID := c.Query("actor_id")

	complete, err := s.ledger.IsComplete(actorID, s.requiredActions)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"actor_id": actorID,
		"complete": complete,
		"required": s.requiredActions,
	})
}

type issueCodeRequest struct {
	ActorID     string `json:"actor_id" validate:"required"`
	UserAddress string `json:"user_address" validate:"required"`
}

// PostPromotionIssue hands out the actor's promotion code once all required
// actions are verified. Issuance itself is idempotent.
func (s *APIServer) PostPromotionIssue(c *fiber.Ctx) error {
	var req issueCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.InvalidInput("unparsable request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return renderError(c, apperr.InvalidInput(err.Error()))
	}

	complete, err := s.ledger.IsComplete(req.ActorID, s.requiredActions)
	if err != nil {
		return renderError(c, err)
	}
	if !complete {
		return renderError(c, apperr.StateConflict("required actions not yet completed"))
	}

	code, err := s.referral.IssueCode(req.UserAddress)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user_address": req.UserAddress,
		"code":         code,
	})
}

type redeemCodeRequest struct {
	UserAddress string `json:"user_address" validate:"required"`
	Code        string `json:"code" validate:"required"`
}

// PostPromotionRedeem links the caller to the code owner as referral parent.
func (s *APIServer) PostPromotionRedeem(c *fiber.Ctx) error {
	var req redeemCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.InvalidInput("unparsable request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return renderError(c, apperr.InvalidInput(err.Error()))
	}

	result, err := s.referral.RedeemCode(req.UserAddress, req.Code)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

type accrueRewardRequest struct {
	ParentAddress string `json:"parent_address" validate:"required"`
	Amount        int64  `json:"amount" validate:"gte=0"`
}

// PostRewardAccrue adds a capped reward increment to the parent's total.
func (s *APIServer) PostRewardAccrue(c *fiber.Ctx) error {
	var req accrueRewardRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.InvalidInput("unparsable request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return renderError(c, apperr.InvalidInput(err.Error()))
	}

	inc, err := s.referral.AccrueReward(req.ParentAddress, req.Amount, s.caps)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(inc)
}

// GetPurchase returns the permanently cached purchase flag for an address.
func (s *APIServer) GetPurchase(c *fiber.Ctx, address string) error {
	purchase, err := s.eligibility.CheckPurchase(c.UserContext(), address)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user_address": address,
		"purchase":     purchase,
	})
}

type airdropClaimRequest struct {
	ActorID     string `json:"actor_id" validate:"required"`
	UserAddress string `json:"user_address" validate:"required"`
	Amount      int64  `json:"amount" validate:"gt=0"`
}

// PostAirdropClaim performs the one-time claim and cap-checked write-back.
func (s *APIServer) PostAirdropClaim(c *fiber.Ctx) error {
	var req airdropClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.InvalidInput("unparsable request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return renderError(c, apperr.InvalidInput(err.Error()))
	}

	result, err := s.airdrop.Claim(c.UserContext(), req.ActorID, req.UserAddress, req.Amount)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
	Info  string `json:"info"`
}

// PostSubscribe stores a newsletter signup. Re-submissions refresh the
// timestamp instead of duplicating the row.
func (s *APIServer) PostSubscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.InvalidInput("unparsable request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return renderError(c, apperr.InvalidInput(err.Error()))
	}

	info := &models.SubscriptionInfo{Email: req.Email, Name: req.Name, Info: req.Info}
	if err := info.Validate(); err != nil {
		return renderError(c, apperr.InvalidInput(err.Error()))
	}
	if err := repository.GetGlobalRepositories().Subscription.Upsert(info); err != nil {
		return renderError(c, apperr.StorageUnavailable("persisting subscription failed", err))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"subscribed": true})
}
