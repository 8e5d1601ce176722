package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/model"
	"github.com/photoshare/backend/internal/repository"
	"github.com/photoshare/backend/internal/service"
	"github.com/photoshare/backend/internal/storage"
)

// maxTagsPerImage caps how many tags an upload may carry.
const maxTagsPerImage = 5

// ImageHandler serves upload, listing, transformation and deletion of images.
type ImageHandler struct {
	Auth   *service.Auth
	Images *repository.ImageRepo
	Store  *storage.Store
}

func NewImageHandler(auth *service.Auth, images *repository.ImageRepo, store *storage.Store) *ImageHandler {
	return &ImageHandler{Auth: auth, Images: images, Store: store}
}

// Upload stores a multipart "file" in the object store and creates the image
// record. "description" and a comma-separated "tags" field ride along in the
// same form.
func (h *ImageHandler) Upload(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	description := strings.TrimSpace(c.FormValue("description"))
	tags := splitTags(c.FormValue("tags"))
	if len(tags) > maxTagsPerImage {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("at most %d tags allowed", maxTagsPerImage)})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
	}
	defer src.Close()

	ctx, cancel := reqCtx(c)
	defer cancel()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// The original goes to storage untouched, so it can stream straight
	// through without buffering the whole file.
	key := fmt.Sprintf("images/%d/originals/%s_%s", u.ID, uuid.New().String(), fh.Filename)
	url, err := h.Store.UploadStream(ctx, key, src, contentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}

	img, err := h.Images.Create(ctx, u.ID, description, url, tags)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create image failed"})
	}
	return c.JSON(http.StatusCreated, img)
}

// List returns images newest first. Supports limit/offset pagination and an
// optional user_id filter.
func (h *ImageHandler) List(c echo.Context) error {
	if u := currentUser(c, h.Auth); u == nil {
		return nil
	}
	limit := parseIntDefault(c.QueryParam("limit"), 20)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	offset := parseIntDefault(c.QueryParam("offset"), 0)
	if offset < 0 {
		offset = 0
	}
	var userID uint64
	if s := c.QueryParam("user_id"); s != "" {
		userID, _ = strconv.ParseUint(s, 10, 64)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Images.List(ctx, userID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "limit": limit, "offset": offset})
}

// Get returns one image by id.
func (h *ImageHandler) Get(c echo.Context) error {
	if u := currentUser(c, h.Auth); u == nil {
		return nil
	}
	img, ok := h.loadImage(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, img)
}

type updateImageReq struct {
	Description string `json:"description"`
}

// Update replaces the description. Allowed for the owner or an admin.
func (h *ImageHandler) Update(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	img, ok := h.loadImage(c)
	if !ok {
		return nil
	}
	if img.UserID != u.ID && !h.Auth.IsAdmin(u) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req updateImageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Images.UpdateDescription(ctx, img.ID, strings.TrimSpace(req.Description)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Images.GetByID(ctx, img.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load image failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes the image row and its stored objects. Allowed for the owner
// or an admin. Object-store cleanup is best effort; a dangling object is
// preferable to a dangling database row.
func (h *ImageHandler) Delete(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	img, ok := h.loadImage(c)
	if !ok {
		return nil
	}
	if img.UserID != u.ID && !h.Auth.IsAdmin(u) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Images.Delete(ctx, img.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if key := h.Store.KeyFromURL(img.URL); key != "" {
		_ = h.Store.Delete(ctx, key)
	}
	if img.QRCodeURL != "" {
		_ = h.Store.DeleteQRCode(ctx, img.ID)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- transformations -----

// Grayscale creates a black and white copy of an image.
func (h *ImageHandler) Grayscale(c echo.Context) error {
	return h.transform(c, "grayscale", func(data []byte, _ echo.Context) ([]byte, string, error) {
		out, err := storage.Grayscale(data)
		return out, "image/jpeg", err
	})
}

// Sepia creates a sepia-toned copy of an image.
func (h *ImageHandler) Sepia(c echo.Context) error {
	return h.transform(c, "sepia", func(data []byte, _ echo.Context) ([]byte, string, error) {
		out, err := storage.Sepia(data)
		return out, "image/jpeg", err
	})
}

type cropReq struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Crop creates a center-cropped copy with the requested dimensions.
func (h *ImageHandler) Crop(c echo.Context) error {
	return h.transform(c, "crop", func(data []byte, c echo.Context) ([]byte, string, error) {
		var req cropReq
		if err := c.Bind(&req); err != nil {
			return nil, "", storage.ErrBadDimensions
		}
		out, err := storage.Crop(data, req.Width, req.Height)
		return out, "image/jpeg", err
	})
}

type roundReq struct {
	Radius int `json:"radius"`
}

// RoundCorners creates a copy with rounded corners. The result is a PNG so
// the corners stay transparent.
func (h *ImageHandler) RoundCorners(c echo.Context) error {
	return h.transform(c, "rounded", func(data []byte, c echo.Context) ([]byte, string, error) {
		var req roundReq
		if err := c.Bind(&req); err != nil {
			return nil, "", storage.ErrBadDimensions
		}
		out, err := storage.RoundCorners(data, req.Radius)
		return out, "image/png", err
	})
}

// transform implements the shared pipeline: authorize as owner, download the
// original, apply fn, upload the derived object under a new key, and create
// a fresh image record pointing at it.
func (h *ImageHandler) transform(c echo.Context, name string, fn func([]byte, echo.Context) ([]byte, string, error)) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	img, ok := h.loadImage(c)
	if !ok {
		return nil
	}
	if img.UserID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	key := h.Store.KeyFromURL(img.URL)
	if key == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "image is not in storage"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	data, err := h.Store.Download(ctx, key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch image failed"})
	}
	out, contentType, err := fn(data, c)
	if err != nil {
		if errors.Is(err, storage.ErrBadDimensions) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid transformation parameters"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transform failed"})
	}

	ext := "jpg"
	if contentType == "image/png" {
		ext = "png"
	}
	newKey := fmt.Sprintf("images/%d/transformed/%s_%s.%s", u.ID, name, uuid.New().String(), ext)
	url, err := h.Store.Upload(ctx, newKey, out, contentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}

	derived, err := h.Images.Create(ctx, u.ID, img.Description, url, img.Tags)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create image failed"})
	}
	return c.JSON(http.StatusCreated, derived)
}

// ----- QR codes -----

// QRCode generates (or regenerates) a QR code pointing at the image URL,
// stores it and returns its URL.
func (h *ImageHandler) QRCode(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	img, ok := h.loadImage(c)
	if !ok {
		return nil
	}
	if img.UserID != u.ID && !h.Auth.IsAdmin(u) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	url, err := h.Store.QRCodeFor(ctx, img.ID, img.URL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate qr failed"})
	}
	if err := h.Images.SetQRCodeURL(ctx, img.ID, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save qr failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"qr_code_url": url})
}

// DeleteQRCode removes a previously generated QR code.
func (h *ImageHandler) DeleteQRCode(c echo.Context) error {
	u := writer(c, h.Auth)
	if u == nil {
		return nil
	}
	img, ok := h.loadImage(c)
	if !ok {
		return nil
	}
	if img.UserID != u.ID && !h.Auth.IsAdmin(u) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if img.QRCodeURL == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no qr code for image"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Store.DeleteQRCode(ctx, img.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete qr failed"})
	}
	if err := h.Images.SetQRCodeURL(ctx, img.ID, ""); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save image failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// loadImage parses :id and fetches the image, writing the error response
// itself when something is wrong.
func (h *ImageHandler) loadImage(c echo.Context) (*model.Image, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return nil, false
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	img, err := h.Images.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return nil, false
	}
	return img, true
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := []string{}
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
