package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
    t.Helper()
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    raw, err := tok.SignedString([]byte(secret))
    require.NoError(t, err)
    return raw
}

func runAuth(t *testing.T, header string) (echo.Context, *httptest.ResponseRecorder, error) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if header != "" {
        req.Header.Set("Authorization", header)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    var inner echo.Context
    err := JWTAuth(testSecret)(func(c echo.Context) error {
        inner = c
        return c.NoContent(http.StatusOK)
    })(c)
    if inner != nil {
        c = inner
    }
    return c, rec, err
}

func TestJWTAuthStoresClaims(t *testing.T) {
    raw := signedToken(t, testSecret, jwt.MapClaims{"sub": float64(7), "role": "CUSTOMER"})
    c, rec, err := runAuth(t, "Bearer "+raw)
    require.NoError(t, err)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, float64(7), c.Get("user_id"))
    assert.Equal(t, "CUSTOMER", c.Get("role"))
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
    cases := []struct {
        name   string
        header string
    }{
        {"missing header", ""},
        {"not bearer", "Basic abc"},
        {"garbage token", "Bearer not-a-jwt"},
        {"wrong secret", "Bearer " + signedToken(t, "other-secret", jwt.MapClaims{"sub": float64(7)})},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            _, rec, err := runAuth(t, tc.header)
            require.NoError(t, err)
            assert.Equal(t, http.StatusUnauthorized, rec.Code)
        })
    }
}

func TestRequireRole(t *testing.T) {
    e := echo.New()
    run := func(role any) *httptest.ResponseRecorder {
        rec := httptest.NewRecorder()
        c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
        if role != nil {
            c.Set("role", role)
        }
        err := RequireRole("OWNER")(func(c echo.Context) error {
            return c.NoContent(http.StatusOK)
        })(c)
        require.NoError(t, err)
        return rec
    }

    assert.Equal(t, http.StatusOK, run("OWNER").Code)
    assert.Equal(t, http.StatusForbidden, run("CUSTOMER").Code)
    assert.Equal(t, http.StatusForbidden, run(nil).Code)
    assert.Equal(t, http.StatusForbidden, run(42).Code)
}
