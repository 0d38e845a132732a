//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestRegisterLoginMe(t *testing.T) {
	resp := doPost(t, "/api/auth/register", map[string]string{
		"email":    "merchant@test.local",
		"password": "long-enough-pass",
		"name":     "Merchant",
		"language": "ar",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}
	created := decodeJSON[authResponse](t, resp)
	resp.Body.Close()

	if created.User.Language != "ar" {
		t.Errorf("language = %q, want ar", created.User.Language)
	}

	// Duplicate registration conflicts.
	resp = doPost(t, "/api/auth/register", map[string]string{
		"email":    "merchant@test.local",
		"password": "long-enough-pass",
		"name":     "Other",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doPost(t, "/api/auth/login", map[string]string{
		"email":    "merchant@test.local",
		"password": "long-enough-pass",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	logged := decodeJSON[authResponse](t, resp)
	resp.Body.Close()

	resp = doAuthed(t, http.MethodGet, "/api/me", nil, logged.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", resp.StatusCode)
	}
	me := decodeJSON[userResponse](t, resp)
	resp.Body.Close()

	if me.Email != "merchant@test.local" {
		t.Errorf("email = %q", me.Email)
	}
	if me.Role != "user" {
		t.Errorf("role = %q, want user", me.Role)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	resp := doGet(t, "/api/me")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
