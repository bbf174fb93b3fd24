package model

import (
	"fmt"
	"strings"
	"time"
)

// User is a platform account as returned by the admin API.
type User struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsAdmin     bool      `json:"is_admin"`
	BasePort    int       `json:"base_port"`
	ContainerID string    `json:"container_id,omitempty"` // empty or null = no container
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastLogin   time.Time `json:"last_login"`
}

// HasContainer reports whether a container is bound to the user.
func (u User) HasContainer() bool {
	return strings.TrimSpace(u.ContainerID) != ""
}

// DisplayName is the username, or "user #<id>" when the API sent none.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return fmt.Sprintf("user #%d", u.ID)
}

// Container is a per-user development container.
type Container struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	UserID       int       `json:"user_id"`
	Status       string    `json:"status"`                  // running, stopped, error
	ActualStatus string    `json:"actual_status,omitempty"` // live state reported by the runtime
	ImageName    string    `json:"image_name"`
	GPUDevices   string    `json:"gpu_devices"` // comma separated device ids
	CPULimit     string    `json:"cpu_limit"`
	MemoryLimit  string    `json:"memory_limit"`
	CreatedAt    time.Time `json:"created_at"`
}

// State returns the live status when the API reported one, else the stored status.
func (c Container) State() string {
	if c.ActualStatus != "" {
		return c.ActualStatus
	}
	return c.Status
}

// IsRunning reports whether the container is up.
func (c Container) IsRunning() bool {
	return c.State() == "running"
}

// Ports holds the service ports assigned to a user's container.
type Ports struct {
	SSH         int `json:"ssh"`
	VSCode      int `json:"vscode"`
	Jupyter     int `json:"jupyter"`
	TensorBoard int `json:"tensorboard,omitempty"`
}

// UserContainer is the payload of GET /users/{id}/container.
type UserContainer struct {
	Container *Container `json:"container"`
	Ports     Ports      `json:"ports"`
}

// LoginResponse is returned by the admin login endpoint.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UserInput is the body for user create and update requests.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// ContainerInput is the body for container creation.
type ContainerInput struct {
	UserID     int    `json:"user_id"`
	GPUDevices string `json:"gpu_devices"`
	Password   string `json:"password"`
}
