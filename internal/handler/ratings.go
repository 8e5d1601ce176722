package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/repository"
	"github.com/photoshare/backend/internal/service"
)

// RatingHandler serves rating endpoints.
type RatingHandler struct {
	Auth    *service.Auth
	Ratings *repository.RatingRepo
	Images  *repository.ImageRepo
}

func NewRatingHandler(auth *service.Auth, ratings *repository.RatingRepo, images *repository.ImageRepo) *RatingHandler {
	return &RatingHandler{Auth: auth, Ratings: ratings, Images: images}
}

type rateReq struct {
	ImageID uint64 `json:"image_id"`
	Value   int    `json:"value"`
}

// Rate records a 1..5 rating of an image by the current user. Rating the
// same image again overwrites the earlier value instead of adding a row.
// Users cannot rate their own images.
func (h *RatingHandler) Rate(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Value < 1 || req.Value > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "value must be between 1 and 5"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	img, err := h.Images.GetByID(ctx, req.ImageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if img.UserID == u.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot rate your own image"})
	}

	rating, err := h.Ratings.Upsert(ctx, u.ID, img.ID, req.Value)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save rating failed"})
	}
	return c.JSON(http.StatusCreated, rating)
}

// ListByImage returns every rating an image has received.
func (h *RatingHandler) ListByImage(c echo.Context) error {
	if u := currentUser(c, h.Auth); u == nil {
		return nil
	}
	imageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Ratings.ListByImage(ctx, imageID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Average returns the arithmetic mean of an image's ratings, zero when the
// image has none.
func (h *RatingHandler) Average(c echo.Context) error {
	if u := currentUser(c, h.Auth); u == nil {
		return nil
	}
	imageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	avg, err := h.Ratings.Average(ctx, imageID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"image_id": imageID, "average": avg})
}

// Delete removes one user's rating of an image. Reserved for moderators and
// admins, who use it to drop abusive ratings.
func (h *RatingHandler) Delete(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	if err := h.Auth.CheckIsAdminOrModerator(u); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	imageID, err := strconv.ParseUint(c.Param("imageID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid image id"})
	}
	userID, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Ratings.Delete(ctx, userID, imageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rating not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
