package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// OwnerRefMiddleware resolves an external identity into ctx.Locals("owner_ref").
// Identity is issued elsewhere; a bearer token is optional, and requests
// without one proceed anonymously with an empty owner ref. A token that is
// present but invalid is rejected.
func OwnerRefMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		ctx.Locals("owner_ref", "")
		return ctx.Next()
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
	}

	ownerRef, _ := claims["sub"].(string)
	if ownerRef == "" {
		ownerRef, _ = claims["user_id"].(string)
	}
	ctx.Locals("owner_ref", ownerRef)
	return ctx.Next()
}

// OwnerRef reads the identity the middleware resolved, empty for anonymous.
func OwnerRef(ctx *fiber.Ctx) string {
	ref, _ := ctx.Locals("owner_ref").(string)
	return ref
}
