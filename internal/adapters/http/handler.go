package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/melih/dockship/internal/adapters/prompt"
	"github.com/melih/dockship/internal/core/domain"
	"github.com/melih/dockship/internal/core/lifecycle"
	"github.com/melih/dockship/internal/core/ports"
)

// GuardFactory creates a guard session that answers prompts with decider.
type GuardFactory func(decider ports.Decider) *lifecycle.Guard

// Handler exposes the lifecycle guard over HTTP. Each request gets its own
// session; questions are answered by the "confirm" query parameter.
type Handler struct {
	newGuard GuardFactory
	region   string
	account  string
}

func NewHandler(newGuard GuardFactory, region, account string) *Handler {
	return &Handler{newGuard: newGuard, region: region, account: account}
}

// Register mounts the routes under /api/v1.
func (h *Handler) Register(app *fiber.App) {
	v1 := app.Group("/api/v1")

	images := v1.Group("/images")
	images.Get("/", h.ListImages)
	images.Post("/", h.BuildImage)
	images.Post("/push", h.PushImage)
	images.Delete("/:name", h.RemoveImage)

	containers := v1.Group("/containers")
	containers.Get("/", h.ListContainers)
	containers.Post("/", h.StartContainer)
	containers.Delete("/:id", h.StopContainer)
	containers.Get("/:id/logs", h.GetContainerLogs)

	v1.Post("/cleanup/:scope", h.CleanUp)
}

func (h *Handler) guard(c *fiber.Ctx) *lifecycle.Guard {
	return h.newGuard(prompt.Fixed(prompt.IsYes(c.Query("confirm")) || c.QueryBool("confirm")))
}

// statusFor maps guard errors to response codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCredentialsUnavailable):
		return fiber.StatusUnauthorized
	case domain.IsFatal(err):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrImageNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func (h *Handler) ListImages(c *fiber.Ctx) error {
	images, err := h.guard(c).Images(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(images)
}

func (h *Handler) ListContainers(c *fiber.Ctx) error {
	containers, err := h.guard(c).Containers(c.Context(), c.QueryBool("all"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(containers)
}

func (h *Handler) BuildImage(c *fiber.Ctx) error {
	var req lifecycle.BuildRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Tag == "" {
		return badRequest(c, "Image tag is required")
	}

	// Note: This is a blocking operation and might take time!
	if err := h.guard(c).Build(c.Context(), req); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"image": req.Tag,
	})
}

func (h *Handler) PushImage(c *fiber.Ctx) error {
	var req lifecycle.PushRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Image == "" {
		return badRequest(c, "Image name is required")
	}
	if req.Region == "" {
		req.Region = h.region
	}
	if req.Account == "" {
		req.Account = h.account
	}

	res, err := h.guard(c).Push(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) RemoveImage(c *fiber.Ctx) error {
	if err := h.guard(c).RemoveImage(c.Context(), c.Params("name")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// StartContainerRequest is the body of POST /containers.
type StartContainerRequest struct {
	Image      string            `json:"image"`
	Ports      []string          `json:"ports"` // host:container[/proto]
	Command    []string          `json:"command"`
	Env        map[string]string `json:"env"`
	Detach     *bool             `json:"detach"`
	AutoRemove *bool             `json:"auto_remove"`
}

func (h *Handler) StartContainer(c *fiber.Ctx) error {
	var req StartContainerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Image == "" {
		return badRequest(c, "Image name is required")
	}
	pm, err := domain.ParsePortMap(req.Ports)
	if err != nil {
		return badRequest(c, err.Error())
	}

	spec := domain.RunSpec{
		Image:      req.Image,
		Ports:      pm,
		Command:    req.Command,
		Env:        req.Env,
		Detach:     req.Detach == nil || *req.Detach,
		AutoRemove: req.AutoRemove == nil || *req.AutoRemove,
	}
	containerID, err := h.guard(c).CreateLocalContainer(c.Context(), spec)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    containerID,
		"image": req.Image,
	})
}

func (h *Handler) StopContainer(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.guard(c).StopContainer(c.Context(), id, ""); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) GetContainerLogs(c *fiber.Ctx) error {
	logs, err := h.guard(c).ContainerLogs(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}

func (h *Handler) CleanUp(c *fiber.Ctx) error {
	scope, err := domain.ParseCleanupScope(c.Params("scope"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.guard(c).CleanUp(c.Context(), scope); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
