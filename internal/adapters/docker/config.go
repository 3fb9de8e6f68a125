package docker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"

	"github.com/melih/dockship/internal/core/domain"
)

// runConfig translates a RunSpec into engine create parameters.
func runConfig(spec domain.RunSpec) (*container.Config, *container.HostConfig, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, host := range spec.Ports.HostPorts() {
		num, proto, _ := strings.Cut(spec.Ports[host], "/")
		port, err := nat.NewPort(proto, num)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid port %s: %w", spec.Ports[host], err)
		}
		exposed[port] = struct{}{}
		bindings[port] = append(bindings[port], nat.PortBinding{HostPort: host})
	}

	env := make([]string, 0, len(spec.Env))
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)

	cfg := &container.Config{
		Image:        spec.Image,
		ExposedPorts: exposed,
		Env:          env,
	}
	if len(spec.Command) > 0 {
		cfg.Cmd = spec.Command
	}
	hostCfg := &container.HostConfig{
		PortBindings: bindings,
		AutoRemove:   spec.AutoRemove,
	}
	return cfg, hostCfg, nil
}
