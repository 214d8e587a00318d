package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func Test_Auth_Register_Login_Me(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access, email := registerAndLogin(t, c, ctx)

	//meで自分の情報が返る
	resp, body := c.doJSON(ctx, t, http.MethodGet, "/auth/me", access, nil)
	requireStatus(t, resp, http.StatusOK, body)

	var me UserDTO
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("json.Unmarshal(UserDTO) failed: %v body=%s", err, string(body))
	}
	if me.Email != email {
		t.Fatalf("me.email=%s want=%s", me.Email, email)
	}
	if me.Role != "USER" {
		t.Fatalf("me.role=%s want=USER", me.Role)
	}
}

func Test_Auth_Register_DuplicateEmail(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	_, email := registerAndLogin(t, c, ctx)

	b, err := json.Marshal(LoginRequest{Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", b)
	requireStatus(t, resp, http.StatusConflict, body)
}

func Test_Auth_Login_WrongPassword(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	_, email := registerAndLogin(t, c, ctx)

	b, err := json.Marshal(LoginRequest{Email: email, Password: "wrong-password"})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", b)
	requireStatus(t, resp, http.StatusUnauthorized, body)
}

func Test_Auth_Me_WithoutToken(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/auth/me", "", nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)
}
