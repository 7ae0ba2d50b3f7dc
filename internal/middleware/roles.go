package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository"
	"github.com/fathima-sithara/campus-service/internal/utils"
)

// RoleGate loads the caller and checks their role. It must run after Auth.
type RoleGate struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewRoleGate(users repository.UserRepository, logger *zap.Logger) *RoleGate {
	return &RoleGate{users: users, logger: logger}
}

func (g *RoleGate) require(allow func(models.Role) bool, denied string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := UserObjectID(c)
		if !ok {
			return utils.JSONError(c, fiber.StatusUnauthorized, "User not authenticated")
		}
		user, err := g.users.FindByID(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return utils.JSONError(c, fiber.StatusUnauthorized, "User not authenticated")
			}
			g.logger.Error("role lookup failed", zap.String("user_id", id.Hex()), zap.Error(err))
			return utils.JSONError(c, fiber.StatusInternalServerError, "Server error")
		}
		if !allow(user.Role) {
			return utils.JSONError(c, fiber.StatusForbidden, denied)
		}
		return c.Next()
	}
}

func (g *RoleGate) RequireFaculty() fiber.Handler {
	return g.require(func(r models.Role) bool { return r == models.RoleFaculty }, "Only faculty members can create events")
}

func (g *RoleGate) RequireNonFaculty() fiber.Handler {
	return g.require(func(r models.Role) bool { return r != models.RoleFaculty }, "Faculty members cannot upload resumes")
}
