package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/photoshare/backend/internal/model"
	"github.com/photoshare/backend/internal/repository"
)

func imageHandler(env *testEnv) *ImageHandler {
	tags := repository.NewTagRepo(env.DB)
	return NewImageHandler(env.Auth, repository.NewImageRepo(env.DB, tags), nil)
}

func TestListImages(t *testing.T) {
	env := setupTest(t)
	defer env.Close()
	h := imageHandler(env)

	env.expectUserLookup(&model.User{
		ID: 2, Username: "bob", Email: "bob@example.com",
		Role: model.RoleUser, Confirmed: true,
	})
	env.Mock.ExpectQuery("SELECT id, user_id, description, url, qr_code_url, created_at FROM images ORDER BY id DESC").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "description", "url", "qr_code_url", "created_at",
		}).AddRow(11, 1, "second", "http://cdn/b.jpg", nil, time.Now()).
			AddRow(10, 1, "first", "http://cdn/a.jpg", nil, time.Now()))
	for _, id := range []uint64{11, 10} {
		env.Mock.ExpectQuery("SELECT t.name FROM tags t").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"name"}))
	}

	req := newJSONRequest(t, http.MethodGet, "/api/images", nil)
	req.Header.Set("Authorization", env.bearerFor(t, "bob@example.com", model.RoleUser))
	c, rec := env.context(req)

	if err := h.List(c); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	items, ok := body["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected 2 items, got %v", body["items"])
	}
	first := items[0].(map[string]any)
	if first["id"] != float64(11) {
		t.Errorf("expected newest image first, got id %v", first["id"])
	}
}

func TestListImages_FilterByUser(t *testing.T) {
	env := setupTest(t)
	defer env.Close()
	h := imageHandler(env)

	env.expectUserLookup(&model.User{
		ID: 2, Username: "bob", Email: "bob@example.com",
		Role: model.RoleUser, Confirmed: true,
	})
	env.Mock.ExpectQuery("SELECT id, user_id, description, url, qr_code_url, created_at FROM images WHERE user_id=").
		WithArgs(uint64(1), 5, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "description", "url", "qr_code_url", "created_at",
		}))

	req := newJSONRequest(t, http.MethodGet, "/api/images?user_id=1&limit=5", nil)
	req.Header.Set("Authorization", env.bearerFor(t, "bob@example.com", model.RoleUser))
	c, rec := env.context(req)

	if err := h.List(c); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["limit"] != float64(5) {
		t.Errorf("expected limit 5 echoed back, got %v", body["limit"])
	}
	if err := env.Mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetImage_NotFound(t *testing.T) {
	env := setupTest(t)
	defer env.Close()
	h := imageHandler(env)

	env.expectUserLookup(&model.User{
		ID: 2, Username: "bob", Email: "bob@example.com",
		Role: model.RoleUser, Confirmed: true,
	})
	env.Mock.ExpectQuery("SELECT id, user_id, description, url, qr_code_url, created_at FROM images").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := newJSONRequest(t, http.MethodGet, "/api/images/99", nil)
	req.Header.Set("Authorization", env.bearerFor(t, "bob@example.com", model.RoleUser))
	c, rec := env.context(req)
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateImage_NotOwner(t *testing.T) {
	env := setupTest(t)
	defer env.Close()
	h := imageHandler(env)

	env.expectUserLookup(&model.User{
		ID: 2, Username: "bob", Email: "bob@example.com",
		Role: model.RoleUser, Confirmed: true,
	})
	expectImageLookup(env, 10, 1)

	req := newJSONRequest(t, http.MethodPatch, "/api/images/10",
		map[string]string{"description": "mine now"})
	req.Header.Set("Authorization", env.bearerFor(t, "bob@example.com", model.RoleUser))
	c, rec := env.context(req)
	c.SetParamNames("id")
	c.SetParamValues("10")

	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner, got %d", rec.Code)
	}
}

func TestUpdateImage_AdminMayEdit(t *testing.T) {
	env := setupTest(t)
	defer env.Close()
	h := imageHandler(env)

	env.expectUserLookup(&model.User{
		ID: 1, Username: "root", Email: "root@example.com",
		Role: model.RoleAdmin, Confirmed: true,
	})
	expectImageLookup(env, 10, 2)
	env.Mock.ExpectExec(regexp.QuoteMeta("UPDATE images SET description=? WHERE id=?")).
		WithArgs("cleaned up", uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.Mock.ExpectQuery("SELECT id, user_id, description, url, qr_code_url, created_at FROM images").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "description", "url", "qr_code_url", "created_at",
		}).AddRow(10, 2, "cleaned up", "http://cdn/img.jpg", nil, time.Now()))
	env.Mock.ExpectQuery("SELECT t.name FROM tags t").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	req := newJSONRequest(t, http.MethodPatch, "/api/images/10",
		map[string]string{"description": "cleaned up"})
	req.Header.Set("Authorization", env.bearerFor(t, "root@example.com", model.RoleAdmin))
	c, rec := env.context(req)
	c.SetParamNames("id")
	c.SetParamValues("10")

	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["description"] != "cleaned up" {
		t.Errorf("expected updated description, got %v", body["description"])
	}
}

func TestSplitTags(t *testing.T) {
	got := splitTags(" Sunset, beach ,,SUNSET , ")
	want := []string{"sunset", "beach", "sunset"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
