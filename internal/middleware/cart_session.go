package middleware

import (
	"net/http"
	"time"

	"app/internal/config"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// カートを識別するCookie名
	CartSessionCookie = "cart_session"

	// contextキー（string）
	CtxCartSessionKey = "cart_session_id"
)

// カートセッションの有効期限。ログイン状態とは独立。
const cartSessionTTL = 180 * 24 * time.Hour

// CartSession は端末ごとのカートIDをCookieで払い出す。
// Cookieが無い・UUIDとして読めないときは新規発行して上書きする。
func CartSession(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := ""

			if ck, err := c.Cookie(CartSessionCookie); err == nil && ck.Value != "" {
				if id, err := uuid.Parse(ck.Value); err == nil {
					sessionID = id.String()
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     CartSessionCookie,
					Value:    sessionID,
					Path:     "/",
					Expires:  time.Now().Add(cartSessionTTL),
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(CtxCartSessionKey, sessionID)
			return next(c)
		}
	}
}
