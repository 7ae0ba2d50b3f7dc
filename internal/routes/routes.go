package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/campus-service/internal/handlers"
	"github.com/fathima-sithara/campus-service/internal/middleware"
	"github.com/fathima-sithara/campus-service/internal/models"
)

// Guards carries the middleware the route table wires in front of handlers.
type Guards struct {
	Auth       fiber.Handler
	Roles      *middleware.RoleGate
	OTPLimit   fiber.Handler
	ResetLimit fiber.Handler
}

func passthrough(c *fiber.Ctx) error { return c.Next() }

func orPass(h fiber.Handler) fiber.Handler {
	if h == nil {
		return passthrough
	}
	return h
}

func Setup(app *fiber.App, h *handlers.Handler, g Guards) {
	auth := g.Auth

	api := app.Group("/api/v1")

	user := api.Group("/user")
	user.Post("/send-otp", orPass(g.OTPLimit), h.SendOTP)
	user.Post("/register", h.Register)
	user.Post("/login", h.Login)
	user.Get("/logout", h.Logout)
	user.Post("/forgot-password", orPass(g.ResetLimit), h.ForgotPassword)
	user.Post("/verify-reset-otp", h.VerifyResetOTP)
	user.Post("/reset-password", h.ResetPassword)

	user.Get("/suggested", auth, h.SuggestedUsers)
	user.Get("/online", auth, h.OnlineUsers)
	user.Post("/profile/edit", auth, h.EditProfile)
	user.Post("/followorunfollow/:id", auth, h.FollowOrUnfollow)
	user.Post("/resume/upload", auth, g.Roles.RequireNonFaculty(), h.UploadResume)
	user.Delete("/resume/delete", auth, h.DeleteResume)
	user.Get("/:id/profile", auth, h.GetProfile)

	post := api.Group("/post", auth)
	post.Post("/addpost", h.AddPost)
	post.Get("/all", h.AllPosts)
	post.Get("/userpost/all", h.MyPosts)
	post.Get("/user/:userId", h.UserPosts)
	post.Delete("/delete/:id", h.DeleteContent(models.KindPost))
	post.Get("/:id/like", h.Like(models.KindPost))
	post.Get("/:id/dislike", h.Unlike(models.KindPost))
	post.Post("/:id/comment", h.AddComment(models.KindPost))
	post.Get("/:id/comment/all", h.Comments(models.KindPost))
	post.Post("/:id/comment/all", h.Comments(models.KindPost))
	post.Delete("/:id/comment/:commentId", h.DeleteComment(models.KindPost))
	post.Get("/:id/bookmark", h.Bookmark)

	event := api.Group("/event", auth)
	event.Post("/add", g.Roles.RequireFaculty(), h.AddEvent)
	event.Get("/all", h.AllEvents)
	event.Delete("/:id", h.DeleteContent(models.KindEvent))
	event.Get("/:id/like", h.Like(models.KindEvent))
	event.Get("/:id/dislike", h.Unlike(models.KindEvent))
	event.Post("/:id/comment", h.AddComment(models.KindEvent))
	event.Get("/:id/comments", h.Comments(models.KindEvent))
	event.Delete("/:id/comment/:commentId", h.DeleteComment(models.KindEvent))

	app.Get("/ws", h.WSUpgrade, h.WS())
}
