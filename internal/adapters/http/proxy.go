package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/melih/dockship/internal/core/domain"
)

// ContainerLister lists running containers.
type ContainerLister interface {
	Containers(ctx context.Context, all bool) ([]domain.Container, error)
}

// PreviewProxy forwards requests for <name>.<host> to the first published
// port of the running local container with that name, so an app started
// with CreateLocalContainer can be tried through the API server.
type PreviewProxy struct {
	containers ContainerLister
	target     string
}

// NewPreviewProxy creates a proxy that dials published ports on targetHost
// (127.0.0.1 when empty).
func NewPreviewProxy(containers ContainerLister, targetHost string) *PreviewProxy {
	if targetHost == "" {
		targetHost = "127.0.0.1"
	}
	return &PreviewProxy{containers: containers, target: targetHost}
}

// ProxyRequest hands API requests and requests without a container
// subdomain to the next handler.
func (p *PreviewProxy) ProxyRequest(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Next()
	}
	name := subdomain(c.Hostname())
	if name == "" {
		return c.Next()
	}

	containers, err := p.containers.Containers(c.Context(), false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to list containers")
	}

	var port string
	for _, ctr := range containers {
		if ctr.Name != name || ctr.State != "running" {
			continue
		}
		if hp := ctr.Ports.HostPorts(); len(hp) > 0 {
			port = hp[0]
		}
		break
	}
	if port == "" {
		return c.Status(fiber.StatusNotFound).SendString(fmt.Sprintf("Container '%s' not found or has no published port", name))
	}

	remote := &url.URL{Scheme: "http", Host: p.target + ":" + port}
	proxy := httputil.NewSingleHostReverseProxy(remote)

	// The app inside sees its own address as Host.
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = remote.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintf(w, "preview target=%s error=%v", remote.Host, err)
	}

	return adaptor.HTTPHandler(proxy)(c)
}

func subdomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return ""
	}
	if parts[0] == "www" || parts[0] == "api" {
		return ""
	}
	// Bare IPv4 addresses have no subdomain.
	if len(parts) == 4 && strings.Trim(host, "0123456789.") == "" {
		return ""
	}
	return parts[0]
}
