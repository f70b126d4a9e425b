package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"babyai/apps/stats/internal/stats"
)

func (a *App) listStatisticsCategories(c *gin.Context) {
	if _, ok := authUserFromContext(c); !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, categoriesResponse{
		Categories:      a.engine.Categories(),
		Timezone:        a.engine.Location().String(),
		DefaultCategory: stats.CategoryFeeding,
	})
}

func (a *App) parseWeeklyStatisticsRequest(c *gin.Context) (weeklyStatisticsRequest, bool) {
	babyID, ok := normalizeBabyID(c.Query("baby_id"))
	if !ok {
		writeError(c, http.StatusBadRequest, "baby_id must be a valid UUID")
		return weeklyStatisticsRequest{}, false
	}

	rawCategory := c.Query("category")
	if strings.TrimSpace(rawCategory) == "" {
		rawCategory = string(stats.CategoryFeeding)
	}
	category, ok := stats.ParseCategory(rawCategory)
	if !ok || !a.engine.Supports(category) {
		writeError(c, http.StatusBadRequest, "category must be one of "+categoryNames(a.engine.Categories()))
		return weeklyStatisticsRequest{}, false
	}

	loc := a.engine.Location()
	date := today(loc)
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := parseDate(raw, loc)
		if err != nil {
			writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return weeklyStatisticsRequest{}, false
		}
		date = parsed
	}

	return weeklyStatisticsRequest{BabyID: babyID, Category: category, Date: date}, true
}

func (a *App) getWeeklyStatistics(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	req, ok := a.parseWeeklyStatisticsRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	baby, statusCode, err := a.identities.getBabyWithAccess(ctx, user.ID, req.BabyID, readRoles)
	if err != nil {
		writeError(c, statusCode, err.Error())
		return
	}

	var rollup stats.WeeklyRollup
	err = a.snapshot(ctx, func(src stats.EventSource) error {
		var computeErr error
		rollup, computeErr = a.engine.WeeklyStatistics(ctx, src, req.Category, req.Date, baby.ID)
		return computeErr
	})
	switch {
	case errors.Is(err, stats.ErrUnsupportedCategory), errors.Is(err, stats.ErrInvalidChild):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		a.logger.ErrorContext(
			ctx,
			"weekly statistics failed",
			slog.String("baby_id", baby.ID),
			slog.String("category", string(req.Category)),
			slog.Any("err", err),
		)
		writeError(c, http.StatusInternalServerError, "Failed to compute weekly statistics")
		return
	}

	c.JSON(http.StatusOK, newWeeklyStatisticsResponse(baby.ID, req.Date, a.engine.Location(), rollup))
}
