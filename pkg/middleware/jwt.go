package middleware

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nao1215/library/pkg/apierror"
)

const (
	// SessionCookieName はセッショントークンを格納するCookie名。
	SessionCookieName = "token"
	// SessionTTL はセッショントークンの有効期間。ペイロードの内容によらず一定。
	SessionTTL = 365 * 24 * time.Hour

	// contextKeyClaims はGinコンテキストにクレームを格納するキー。
	contextKeyClaims = "session_claims"
)

// ErrReservedClaim はペイロードに有効期間を決めるクレームが含まれていることを表す。
var ErrReservedClaim = errors.New("予約済みのクレームは指定できません")

// reservedClaims は発行時にサーバーが設定するため、呼び出し元が指定できないクレーム。
var reservedClaims = []string{"exp", "iat", "nbf"}

// claimsContextKey はリクエストのcontext.Contextにクレームを格納するキーの型。
type claimsContextKey struct{}

// GenerateJWT は任意のペイロードをクレームとして持つHS256署名のトークンを生成する。
// 有効期限はnowから SessionTTL 後に固定される。ペイロードの形は検証しない。
func GenerateJWT(secret string, payload map[string]any, now time.Time) (string, error) {
	for _, key := range reservedClaims {
		if _, ok := payload[key]; ok {
			return "", fmt.Errorf("%w: %s", ErrReservedClaim, key)
		}
	}

	claims := make(jwt.MapClaims, len(payload)+2)
	maps.Copy(claims, payload)
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(SessionTTL))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseJWT はトークンの署名と有効期限を検証し、クレームを返す。
// HS256以外のアルゴリズムと、有効期限のないトークンは拒否する。
func ParseJWT(secret, tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("トークンが無効です")
	}
	return claims, nil
}

// SetSessionCookie はセッショントークンをHttpOnly Cookieとしてレスポンスに設定する。
// secureがtrueの場合は Secure かつ SameSite=None、falseの場合は SameSite=Strict とする。
func SetSessionCookie(c *gin.Context, token string, secure bool) {
	http.SetCookie(c.Writer, sessionCookie(token, secure))
}

// ClearSessionCookie はセッションCookieを削除する。ブラウザが確実に削除するよう、
// 発行時と同じ属性で Max-Age=0 を返す。
func ClearSessionCookie(c *gin.Context, secure bool) {
	cookie := sessionCookie("", secure)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(c.Writer, cookie)
}

func sessionCookie(value string, secure bool) *http.Cookie {
	sameSite := http.SameSiteStrictMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}

// JWTAuth はCookieのセッショントークンを検証するGinミドルウェアを返す。
// トークンがない場合、署名が不正な場合、期限切れの場合は401を返す。
// 検証に成功した場合はクレームをGinコンテキストとリクエストのコンテキストに設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookieName)
		if err != nil || tokenString == "" {
			apierror.Abort(c, http.StatusUnauthorized, apierror.CodeUnauthorized, "認証が必要です")
			return
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			apierror.Abort(c, http.StatusUnauthorized, apierror.CodeUnauthorized, "トークンが無効です")
			return
		}

		c.Set(contextKeyClaims, claims)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), claimsContextKey{}, claims))
		c.Next()
	}
}

// GetClaims はGinコンテキストからクレームを取得する。
// JWTAuthミドルウェアが適用されていない場合はnilを返す。
func GetClaims(c *gin.Context) jwt.MapClaims {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(jwt.MapClaims)
	return claims
}

// ClaimsFromContext はリクエストのコンテキストからクレームを取得する。
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(jwt.MapClaims)
	return claims, ok
}

// GetEmail は認証済みユーザーのemailクレームを返す。存在しない場合は空文字列を返す。
func GetEmail(c *gin.Context) string {
	email, _ := GetClaims(c)["email"].(string)
	return email
}
