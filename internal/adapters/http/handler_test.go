package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melih/dockship/internal/core/domain"
	"github.com/melih/dockship/internal/core/lifecycle"
	"github.com/melih/dockship/internal/core/ports"
)

type memEngine struct {
	images     []domain.Image
	containers []domain.Container
	runs       []domain.RunSpec
	stopped    []string
}

func (m *memEngine) ListImages(_ context.Context, name string) ([]domain.Image, error) {
	var out []domain.Image
	for _, img := range m.images {
		for _, t := range img.RepoTags {
			if name == "" || t == name || domain.ParseImageRef(t).Repository == name {
				out = append(out, img)
				break
			}
		}
	}
	return out, nil
}

func (m *memEngine) InspectImage(ctx context.Context, ref string) (domain.Image, error) {
	images, _ := m.ListImages(ctx, ref)
	if len(images) == 0 {
		return domain.Image{}, domain.ErrImageNotFound
	}
	return images[0], nil
}

func (m *memEngine) ListContainers(_ context.Context, f domain.ContainerFilter) ([]domain.Container, error) {
	var out []domain.Container
	for _, c := range m.containers {
		if f.Ancestor == "" || c.Image == f.Ancestor {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memEngine) BuildImage(context.Context, string, string, string) error { return nil }

func (m *memEngine) RunContainer(_ context.Context, spec domain.RunSpec) (string, error) {
	m.runs = append(m.runs, spec)
	return "new-container-id", nil
}

func (m *memEngine) StopContainer(_ context.Context, id string) error {
	m.stopped = append(m.stopped, id)
	return nil
}

func (m *memEngine) PruneContainers(context.Context) (int, error) { return 0, nil }
func (m *memEngine) RemoveImage(context.Context, string, bool) error { return nil }
func (m *memEngine) TagImage(context.Context, string, string) error { return nil }
func (m *memEngine) Login(context.Context, domain.Credentials) error { return nil }
func (m *memEngine) PushImage(context.Context, string) ([]domain.PushEvent, error) {
	return nil, nil
}
func (m *memEngine) ContainerLogs(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("log line\n")), nil
}

type noCreds struct{}

func (noCreds) AccountID(context.Context, string) (string, error) {
	return "", fmt.Errorf("sts: %w", domain.ErrCredentialsUnavailable)
}

func (noCreds) Credentials(context.Context, string) (domain.Credentials, error) {
	return domain.Credentials{}, domain.ErrCredentialsUnavailable
}

func newTestApp(engine *memEngine) *fiber.App {
	factory := func(d ports.Decider) *lifecycle.Guard {
		return lifecycle.New(lifecycle.Deps{Engine: engine, Registry: noCreds{}, Decider: d})
	}
	app := fiber.New()
	NewHandler(factory, "eu-west-1", "").Register(app)
	return app
}

func TestListContainers(t *testing.T) {
	engine := &memEngine{containers: []domain.Container{{ID: "abc", Image: "app:v1"}}}
	app := newTestApp(engine)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/containers", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []domain.Container
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0].ID)
}

func TestStartContainer(t *testing.T) {
	body := `{"image":"app:v1","ports":["8080:8080"]}`

	t.Run("free port", func(t *testing.T) {
		engine := &memEngine{}
		app := newTestApp(engine)

		req := httptest.NewRequest("POST", "/api/v1/containers", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		require.Len(t, engine.runs, 1)
		assert.True(t, engine.runs[0].Detach)
		assert.Equal(t, domain.PortMap{"8080": "8080/tcp"}, engine.runs[0].Ports)
	})

	t.Run("conflict without confirm", func(t *testing.T) {
		engine := &memEngine{containers: []domain.Container{{ID: "old", Image: "db", Ports: domain.PortMap{"8080": "80/tcp"}}}}
		app := newTestApp(engine)

		req := httptest.NewRequest("POST", "/api/v1/containers", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Empty(t, engine.runs)
	})

	t.Run("conflict confirmed", func(t *testing.T) {
		engine := &memEngine{containers: []domain.Container{{ID: "old", Image: "db", Ports: domain.PortMap{"8080": "80/tcp"}}}}
		app := newTestApp(engine)

		req := httptest.NewRequest("POST", "/api/v1/containers?confirm=yes", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, []string{"old"}, engine.stopped)
		assert.Len(t, engine.runs, 1)
	})

	t.Run("bad port", func(t *testing.T) {
		app := newTestApp(&memEngine{})
		req := httptest.NewRequest("POST", "/api/v1/containers", strings.NewReader(`{"image":"app","ports":["x:1"]}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestPushWithoutCredentials(t *testing.T) {
	engine := &memEngine{images: []domain.Image{{ID: "sha256:1", RepoTags: []string{"app:latest"}}}}
	app := newTestApp(engine)

	req := httptest.NewRequest("POST", "/api/v1/images/push", strings.NewReader(`{"image":"app"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCleanUpScope(t *testing.T) {
	app := newTestApp(&memEngine{})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/cleanup/volumes", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/api/v1/cleanup/containers", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusConflict, statusFor(domain.Fatal(domain.ErrConflictingContainer, "x", nil)))
	assert.Equal(t, fiber.StatusUnauthorized, statusFor(domain.Fatal(domain.ErrCredentialsUnavailable, "x", nil)))
	assert.Equal(t, fiber.StatusNotFound, statusFor(fmt.Errorf("tag: %w", domain.ErrImageNotFound)))
	assert.Equal(t, fiber.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
