package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/campus-service/internal/middleware"
	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/services"
	"github.com/fathima-sithara/campus-service/internal/utils"
)

func (h *Handler) SendOTP(c *fiber.Ctx) error {
	var req models.SendOTPRequest
	if err := parseBody(c, &req); err != nil {
		return h.writeError(c, err)
	}
	if err := h.svc.Signup.RequestCode(c.UserContext(), req); err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "OTP sent successfully", nil)
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return h.writeError(c, err)
	}
	if _, err := h.svc.Signup.Confirm(c.UserContext(), req); err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, "Account created successfully.", nil)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return h.writeError(c, err)
	}
	token, profile, err := h.svc.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.writeError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
		MaxAge:   int(h.tokens.TTL().Seconds()),
		Expires:  time.Now().Add(h.tokens.TTL()),
	})
	return utils.JSONSuccess(c, fiber.StatusOK, "Welcome back "+profile.Username, fiber.Map{"user": profile})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		HTTPOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return utils.JSONSuccess(c, fiber.StatusOK, "Logged out successfully.", nil)
}

func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return h.writeError(c, err)
	}
	if err := h.svc.Reset.Request(c.UserContext(), req.Email); err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Password reset OTP sent to your email", nil)
}

func (h *Handler) VerifyResetOTP(c *fiber.Ctx) error {
	var req models.VerifyResetRequest
	if err := parseBody(c, &req); err != nil {
		return h.writeError(c, err)
	}
	if err := h.svc.Reset.Verify(c.UserContext(), req.Email, req.OTP); err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "OTP verified successfully", nil)
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return h.writeError(c, err)
	}
	if err := h.svc.Reset.Complete(c.UserContext(), req.Email, req.NewPassword, req.ConfirmPassword); err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Password reset successfully", nil)
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "user")
	if err != nil {
		return h.writeError(c, err)
	}
	profile, err := h.svc.Profiles.Get(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"user": profile})
}

func (h *Handler) EditProfile(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return h.unauthenticated(c)
	}
	photo, err := h.formUpload(c, "profilePhoto")
	if err != nil {
		return h.writeError(c, err)
	}
	user, err := h.svc.Profiles.Edit(c.UserContext(), me, services.ProfileEdit{
		Bio:    c.FormValue("bio"),
		Gender: c.FormValue("gender"),
		Photo:  photo,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Profile updated.", fiber.Map{"user": user})
}

func (h *Handler) SuggestedUsers(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return h.unauthenticated(c)
	}
	users, err := h.svc.Profiles.Suggested(c.UserContext(), me)
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"users": users})
}

func (h *Handler) FollowOrUnfollow(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return h.unauthenticated(c)
	}
	target, err := pathID(c, "id", "user")
	if err != nil {
		return h.writeError(c, err)
	}
	following, err := h.svc.Graph.FollowOrUnfollow(c.UserContext(), me, target)
	if err != nil {
		return h.writeError(c, err)
	}
	msg := "Unfollowed successfully"
	if following {
		msg = "followed successfully"
	}
	return utils.JSONSuccess(c, fiber.StatusOK, msg, fiber.Map{"following": following})
}

func (h *Handler) UploadResume(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return h.unauthenticated(c)
	}
	file, err := h.formUpload(c, "resume")
	if err != nil {
		return h.writeError(c, err)
	}
	if file == nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "No file uploaded")
	}
	user, err := h.svc.Profiles.UploadResume(c.UserContext(), me, *file)
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Resume uploaded successfully", fiber.Map{
		"resumeUrl":  user.ResumeURL,
		"resumeName": user.ResumeName,
	})
}

func (h *Handler) DeleteResume(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return h.unauthenticated(c)
	}
	if err := h.svc.Profiles.DeleteResume(c.UserContext(), me); err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Resume deleted successfully", nil)
}

// OnlineUsers lists the IDs of users with a live websocket.
func (h *Handler) OnlineUsers(c *fiber.Ctx) error {
	online := []string{}
	if h.online != nil {
		online = h.online.Online()
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"onlineUsers": online})
}
