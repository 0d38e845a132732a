//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestAdminRequiresAdminRole(t *testing.T) {
	resp := doPost(t, "/api/auth/register", map[string]string{
		"email":    "plain@test.local",
		"password": "long-enough-pass",
		"name":     "Plain",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	plain := decodeJSON[authResponse](t, resp)
	resp.Body.Close()

	resp = doAuthed(t, http.MethodGet, "/api/admin/stats", nil, plain.Token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestAdminStats(t *testing.T) {
	token := loginAdmin(t)

	resp := doAuthed(t, http.MethodGet, "/api/admin/stats", nil, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	got := decodeJSON[struct {
		Users     int64 `json:"users"`
		Posts     int64 `json:"posts"`
		Campaigns int64 `json:"campaigns"`
	}](t, resp)
	if got.Users < 1 || got.Posts < 2 || got.Campaigns < 1 {
		t.Errorf("stats look unseeded: %+v", got)
	}
}

func TestAdminPostPublishFlow(t *testing.T) {
	token := loginAdmin(t)

	resp := doAuthed(t, http.MethodPost, "/api/admin/posts", map[string]any{
		"titleEn": "Integration Draft",
		"bodyEn":  "body",
		"publish": false,
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decodeJSON[struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}](t, resp)
	resp.Body.Close()

	// Invisible until published.
	resp = doGet(t, "/api/posts/"+created.Slug)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("draft visibility status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doAuthed(t, http.MethodPatch, "/api/admin/posts/"+created.ID, map[string]any{
		"publish": true,
	}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("publish status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/posts/"+created.Slug)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("published visibility status = %d, want 200", resp.StatusCode)
	}
}

func TestAdminMigrationStatus(t *testing.T) {
	token := loginAdmin(t)

	resp := doAuthed(t, http.MethodGet, "/api/admin/migrations", nil, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	recs := decodeJSON[[]migrationRecord](t, resp)
	if len(recs) < 5 {
		t.Fatalf("got %d migrations, want at least 5", len(recs))
	}
	for _, rec := range recs {
		if rec.Status != "applied" {
			t.Errorf("migration %03d_%s status = %q, want applied", rec.Version, rec.Name, rec.Status)
		}
	}
}

func TestAdminMigrationRoundTrip(t *testing.T) {
	token := loginAdmin(t)

	// Roll back the newest applied migration.
	resp := doAuthed(t, http.MethodPost, "/api/admin/migrations/down", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("down status = %d, want 200", resp.StatusCode)
	}
	reverted := decodeJSON[struct {
		Version int    `json:"version"`
		Name    string `json:"name"`
	}](t, resp)
	resp.Body.Close()
	if reverted.Version == 0 || reverted.Name == "" {
		t.Fatalf("down response incomplete: %+v", reverted)
	}

	// The status listing shows that version as pending again.
	resp = doAuthed(t, http.MethodGet, "/api/admin/migrations", nil, token)
	recs := decodeJSON[[]migrationRecord](t, resp)
	resp.Body.Close()
	seen := false
	for _, rec := range recs {
		if rec.Version == reverted.Version {
			seen = true
			if rec.Status != "pending" {
				t.Errorf("reverted migration status = %q, want pending", rec.Status)
			}
		}
	}
	if !seen {
		t.Fatalf("reverted version %d missing from status listing", reverted.Version)
	}

	// Up re-applies exactly the reverted migration.
	resp = doAuthed(t, http.MethodPost, "/api/admin/migrations/up", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("up status = %d, want 200", resp.StatusCode)
	}
	result := decodeJSON[struct {
		Applied    int               `json:"applied"`
		Migrations []migrationRecord `json:"migrations"`
	}](t, resp)
	resp.Body.Close()
	if result.Applied != 1 {
		t.Errorf("applied = %d, want 1", result.Applied)
	}
	for _, rec := range result.Migrations {
		if rec.Status != "applied" {
			t.Errorf("migration %03d_%s status = %q, want applied", rec.Version, rec.Name, rec.Status)
		}
	}
}
