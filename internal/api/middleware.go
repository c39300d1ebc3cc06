package api

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
	"techstore/internal/repository"
	"techstore/internal/service"
)

// JWTMiddleware validates bearer access tokens and stores the parsed claims
// in the request context, so handlers read identity from the request rather
// than any ambient state.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: secret,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
	})
}

// currentClaims extracts the verified claims placed by JWTMiddleware.
func currentClaims(c echo.Context) *service.JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*service.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUserID returns the authenticated user's id.
func currentUserID(c echo.Context) (primitive.ObjectID, error) {
	claims := currentClaims(c)
	if claims == nil {
		return primitive.NilObjectID, echo.NewHTTPError(401, "unauthorized")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(401, "unauthorized")
	}
	return id, nil
}

func isStaff(c echo.Context) bool {
	claims := currentClaims(c)
	return claims != nil && (claims.Role == entity.RoleStaff || claims.Role == entity.RoleAdmin)
}

// RequireStaff gates the back-office routes.
func RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !isStaff(c) {
			return c.JSON(403, map[string]string{"error": "staff access required"})
		}
		return next(c)
	}
}

// RequireAdmin gates staff management and role changes.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := currentClaims(c)
		if claims == nil || claims.Role != entity.RoleAdmin {
			return c.JSON(403, map[string]string{"error": "admin access required"})
		}
		return next(c)
	}
}

// pageFromQuery reads ?page= and ?page_size= with sane defaults.
func pageFromQuery(c echo.Context) repository.Page {
	number, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	return repository.PageFrom(number, size)
}
