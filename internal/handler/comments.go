package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/model"
	"github.com/photoshare/backend/internal/repository"
	"github.com/photoshare/backend/internal/service"
)

// CommentHandler serves comment endpoints.
type CommentHandler struct {
	Auth     *service.Auth
	Comments *repository.CommentRepo
	Images   *repository.ImageRepo
}

func NewCommentHandler(auth *service.Auth, comments *repository.CommentRepo, images *repository.ImageRepo) *CommentHandler {
	return &CommentHandler{Auth: auth, Comments: comments, Images: images}
}

type postCommentReq struct {
	ImageID uint64 `json:"image_id"`
	Text    string `json:"text"`
}
type changeCommentReq struct {
	Text string `json:"text"`
}

// Post adds a comment to an image.
func (h *CommentHandler) Post(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	var req postCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Images.GetByID(ctx, req.ImageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	comment, err := h.Comments.Create(ctx, req.ImageID, u.ID, text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, comment)
}

// Get returns one comment by id.
func (h *CommentHandler) Get(c echo.Context) error {
	if u := currentUser(c, h.Auth); u == nil {
		return nil
	}
	comment, ok := h.loadComment(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, comment)
}

// ByImage lists all comments on an image.
func (h *CommentHandler) ByImage(c echo.Context) error {
	if u := currentUser(c, h.Auth); u == nil {
		return nil
	}
	imageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Comments.ListByImage(ctx, imageID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ByUser lists all comments written by a user.
func (h *CommentHandler) ByUser(c echo.Context) error {
	if u := currentUser(c, h.Auth); u == nil {
		return nil
	}
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Comments.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Change edits the text of a comment. Only the author may edit; moderators
// can delete but not rewrite other people's words.
func (h *CommentHandler) Change(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	comment, ok := h.loadComment(c)
	if !ok {
		return nil
	}
	if comment.UserID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req changeCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Comments.UpdateText(ctx, comment.ID, text); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Comments.GetByID(ctx, comment.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load comment failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a comment. Allowed for the author, moderators and admins.
func (h *CommentHandler) Delete(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	comment, ok := h.loadComment(c)
	if !ok {
		return nil
	}
	if comment.UserID != u.ID && !h.Auth.IsAdminOrModerator(u) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// loadComment parses :id and fetches the comment, writing the error response
// itself when something is wrong.
func (h *CommentHandler) loadComment(c echo.Context) (*model.Comment, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return nil, false
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	comment, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return nil, false
	}
	return comment, true
}
