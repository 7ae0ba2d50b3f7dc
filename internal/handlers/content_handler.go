package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/services"
	"github.com/fathima-sithara/campus-service/internal/utils"
)

func label(kind models.ContentKind) string {
	if kind == models.KindEvent {
		return "Event"
	}
	return "Post"
}

func (h *Handler) AddPost(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return h.unauthenticated(c)
	}
	image, err := h.formUpload(c, "image")
	if err != nil {
		return h.writeError(c, err)
	}
	post, err := h.svc.Content.CreatePost(c.UserContext(), me, c.FormValue("caption"), image)
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, "New post added", fiber.Map{"post": post})
}

func (h *Handler) AllPosts(c *fiber.Ctx) error {
	posts, err := h.svc.Content.ListPosts(c.UserContext())
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"posts": posts})
}

func (h *Handler) MyPosts(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return h.unauthenticated(c)
	}
	posts, err := h.svc.Content.ListPostsByAuthor(c.UserContext(), me)
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"posts": posts})
}

func (h *Handler) UserPosts(c *fiber.Ctx) error {
	author, err := pathID(c, "userId", "user")
	if err != nil {
		return h.writeError(c, err)
	}
	posts, err := h.svc.Content.ListPostsByAuthor(c.UserContext(), author)
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"posts": posts})
}

func (h *Handler) AddEvent(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return h.unauthenticated(c)
	}
	image, err := h.formUpload(c, "image")
	if err != nil {
		return h.writeError(c, err)
	}
	event, err := h.svc.Content.CreateEvent(c.UserContext(), me, services.EventInput{
		Caption:     c.FormValue("caption"),
		Description: c.FormValue("description"),
		StartDate:   c.FormValue("startDate"),
		EndDate:     c.FormValue("endDate"),
		Image:       image,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, "Event created successfully", fiber.Map{"event": event})
}

func (h *Handler) AllEvents(c *fiber.Ctx) error {
	events, err := h.svc.Content.ListEvents(c.UserContext())
	if err != nil {
		return h.writeError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"events": events})
}

// DeleteContent serves both DELETE /post/delete/:id and DELETE /event/:id.
func (h *Handler) DeleteContent(kind models.ContentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		me, ok := caller(c)
		if !ok {
			return h.unauthenticated(c)
		}
		id, err := pathID(c, "id", string(kind))
		if err != nil {
			return h.writeError(c, err)
		}
		if err := h.svc.Content.Delete(c.UserContext(), kind, me, id); err != nil {
			return h.writeError(c, err)
		}
		return utils.JSONSuccess(c, fiber.StatusOK, label(kind)+" deleted successfully", nil)
	}
}

func (h *Handler) Like(kind models.ContentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		me, ok := caller(c)
		if !ok {
			return h.unauthenticated(c)
		}
		id, err := pathID(c, "id", string(kind))
		if err != nil {
			return h.writeError(c, err)
		}
		if err := h.svc.Interactions.Like(c.UserContext(), kind, me, id); err != nil {
			return h.writeError(c, err)
		}
		return utils.JSONSuccess(c, fiber.StatusOK, label(kind)+" liked", nil)
	}
}

func (h *Handler) Unlike(kind models.ContentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		me, ok := caller(c)
		if !ok {
			return h.unauthenticated(c)
		}
		id, err := pathID(c, "id", string(kind))
		if err != nil {
			return h.writeError(c, err)
		}
		if err := h.svc.Interactions.Unlike(c.UserContext(), kind, me, id); err != nil {
			return h.writeError(c, err)
		}
		return utils.JSONSuccess(c, fiber.StatusOK, label(kind)+" unliked", nil)
	}
}

func (h *Handler) AddComment(kind models.ContentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		me, ok := caller(c)
		if !ok {
			return h.unauthenticated(c)
		}
		id, err := pathID(c, "id", string(kind))
		if err != nil {
			return h.writeError(c, err)
		}
		var req models.CommentRequest
		if err := parseBody(c, &req); err != nil {
			return h.writeError(c, err)
		}
		comment, err := h.svc.Interactions.Comment(c.UserContext(), kind, me, id, req.Text)
		if err != nil {
			return h.writeError(c, err)
		}
		return utils.JSONSuccess(c, fiber.StatusCreated, "Comment added", fiber.Map{"comment": comment})
	}
}

func (h *Handler) Comments(kind models.ContentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id", string(kind))
		if err != nil {
			return h.writeError(c, err)
		}
		comments, err := h.svc.Interactions.ListComments(c.UserContext(), kind, id)
		if err != nil {
			return h.writeError(c, err)
		}
		return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"comments": comments})
	}
}

func (h *Handler) DeleteComment(kind models.ContentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		me, ok := caller(c)
		if !ok {
			return h.unauthenticated(c)
		}
		id, err := pathID(c, "id", string(kind))
		if err != nil {
			return h.writeError(c, err)
		}
		commentID, err := pathID(c, "commentId", "comment")
		if err != nil {
			return h.writeError(c, err)
		}
		if err := h.svc.Interactions.DeleteComment(c.UserContext(), kind, me, id, commentID); err != nil {
			return h.writeError(c, err)
		}
		return utils.JSONSuccess(c, fiber.StatusOK, "Comment deleted", nil)
	}
}

func (h *Handler) Bookmark(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return h.unauthenticated(c)
	}
	id, err := pathID(c, "id", "post")
	if err != nil {
		return h.writeError(c, err)
	}
	saved, err := h.svc.Profiles.ToggleBookmark(c.UserContext(), me, id)
	if err != nil {
		return h.writeError(c, err)
	}
	if saved {
		return utils.JSONSuccess(c, fiber.StatusOK, "Post bookmarked", fiber.Map{"type": "saved"})
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Post removed from bookmark", fiber.Map{"type": "unsaved"})
}
