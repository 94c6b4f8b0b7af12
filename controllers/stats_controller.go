package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/agribridge/agribridge/middleware"
	"github.com/agribridge/agribridge/stores"
	"github.com/agribridge/agribridge/utils"
)

// StatsController backs the dashboard counter cards: post totals, open and
// resolved cases, response volume and registration count.
type StatsController struct {
	posts *stores.PostStore
	regs  *stores.RegistrationStore
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(posts *stores.PostStore, regs *stores.RegistrationStore) *StatsController {
	return &StatsController{posts: posts, regs: regs}
}

// GetStats returns aggregate statistics across the whole post collection.
func (s *StatsController) GetStats(ctx *gin.Context) {
	total, open, resolved, responses := s.posts.Stats()

	utils.Success(ctx, gin.H{
		"post_count":         total,
		"open_count":         open,
		"resolved_count":     resolved,
		"response_count":     responses,
		"registration_count": len(s.regs.ListAll()),
	})
}

// GetMyStats returns the same counters scoped to the calling farmer.
func (s *StatsController) GetMyStats(ctx *gin.Context) {
	sess, _ := middleware.GetSession(ctx)
	var total, open, resolved int
	for _, p := range s.posts.ListForFarmer(sess.Email) {
		total++
		if p.Resolved {
			resolved++
		} else {
			open++
		}
	}
	utils.Success(ctx, gin.H{
		"post_count":     total,
		"open_count":     open,
		"resolved_count": resolved,
	})
}
