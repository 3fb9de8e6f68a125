package domain

// Container represents a container known to the engine.
type Container struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Image  string  `json:"image"`
	Status string  `json:"status"`
	State  string  `json:"state"` // running, exited, etc.
	Ports  PortMap `json:"ports"`
}

// ShortID returns the 12 character form of the container ID.
func (c Container) ShortID() string {
	if len(c.ID) > 12 {
		return c.ID[:12]
	}
	return c.ID
}

// ContainerFilter narrows a container listing.
type ContainerFilter struct {
	All      bool   // include stopped containers
	Ancestor string // only containers created from this image
}

// RunSpec describes a container to create from a local image.
type RunSpec struct {
	Image      string            `json:"image"`
	Ports      PortMap           `json:"ports"`
	Detach     bool              `json:"detach"`
	Command    []string          `json:"command"`
	AutoRemove bool              `json:"auto_remove"`
	Env        map[string]string `json:"env"`
}
