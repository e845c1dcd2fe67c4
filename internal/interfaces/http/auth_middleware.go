package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factura-afip/internal/application/dto"
	"github.com/jhoicas/factura-afip/pkg/jwt"
)

// Locals keys con los datos del usuario autenticado.
const (
	LocalUserID   = "user_id"
	LocalEmail    = "email"
	LocalFullName = "full_name"
	LocalRole     = "role"
)

// Roles reconocidos en el token.
const (
	RoleAdmin       = "admin"
	RoleFacturacion = "facturacion"
	RoleConsulta    = "consulta"
)

// AuthMiddleware valida el Bearer Token JWT y deja los datos del usuario en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		user, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil || user.ID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalEmail, user.Email)
		c.Locals(LocalFullName, user.FullName)
		c.Locals(LocalRole, user.Role)
		return c.Next()
	}
}

// RequireRole deja pasar sólo a los roles indicados. Va después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no indica un rol"})
		}
		for _, r := range roles {
			if strings.EqualFold(r, role) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
}

func local(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return local(c, LocalUserID) }

// GetEmail devuelve el email del usuario autenticado.
func GetEmail(c *fiber.Ctx) string { return local(c, LocalEmail) }

// GetFullName devuelve el nombre del usuario autenticado.
func GetFullName(c *fiber.Ctx) string { return local(c, LocalFullName) }

// GetRole devuelve el rol del usuario autenticado.
func GetRole(c *fiber.Ctx) string { return local(c, LocalRole) }
