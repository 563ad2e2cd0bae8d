package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterHandlers attaches the v1 routes to the given router group. The
// caller decides which middleware guards the group.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	router.Post("/verify/:action", s.PostVerifyAction)
	router.Post("/check/:action", s.PostCheckAction)

	router.Get("/interactions/status", s.GetInteractionStatus)
	router.Get("/interactions/complete", s.GetInteractionComplete)

	router.Post("/promotion/issue", s.PostPromotionIssue)
	router.Post("/promotion/redeem", s.PostPromotionRedeem)
	router.Post("/reward/accrue", s.PostRewardAccrue)

	router.Get("/purchase/:address", func(c *fiber.Ctx) error {
		return s.GetPurchase(c, c.Params("address"))
	})

	router.Post("/airdrop/claim", s.PostAirdropClaim)
	router.Post("/subscribe", s.PostSubscribe)
}
