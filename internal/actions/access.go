package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/connermo/ai4s/internal/model"
)

// Access is the connection sheet handed to a container's owner.
type Access struct {
	Username    string      `yaml:"username"`
	Password    string      `yaml:"password,omitempty"`
	Host        string      `yaml:"host"`
	Container   string      `yaml:"container,omitempty"`
	Status      string      `yaml:"status,omitempty"`
	GPUDevices  string      `yaml:"gpu_devices,omitempty"`
	SSH         string      `yaml:"ssh"`
	VSCode      string      `yaml:"vscode"`
	Jupyter     string      `yaml:"jupyter"`
	TensorBoard string      `yaml:"tensorboard,omitempty"`
	Directories []Directory `yaml:"directories"`
}

// Directory describes one mount inside the container.
type Directory struct {
	Path   string `yaml:"path"`
	Access string `yaml:"access"`
}

// LoadAccess fetches the user and their container ports concurrently and
// builds the access sheet. password is included only when non-empty.
func LoadAccess(ctx context.Context, api model.AdminAPI, userID int, host, password string) (Access, error) {
	var (
		user model.User
		uc   model.UserContainer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = api.GetUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		uc, err = api.UserContainer(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Access{}, fmt.Errorf("actions: load access for user %d: %w", userID, err)
	}
	return BuildAccess(user, uc, host, password), nil
}

// BuildAccess assembles the access sheet from already loaded data.
func BuildAccess(u model.User, uc model.UserContainer, host, password string) Access {
	host = strings.TrimSpace(host)
	if host == "" {
		host = "localhost"
	}
	a := Access{
		Username: u.Username,
		Password: password,
		Host:     host,
		SSH:      fmt.Sprintf("ssh %s@%s -p %s", u.Username, host, portText(uc.Ports.SSH)),
		VSCode:   serviceURL(host, uc.Ports.VSCode),
		Jupyter:  serviceURL(host, uc.Ports.Jupyter),
		Directories: []Directory{
			{Path: "/home/" + u.Username, Access: "private"},
			{Path: "/shared", Access: "read-only"},
			{Path: "/workspace", Access: "read-write"},
		},
	}
	if uc.Ports.TensorBoard > 0 {
		a.TensorBoard = serviceURL(host, uc.Ports.TensorBoard)
	}
	if c := uc.Container; c != nil {
		a.Container = c.Name
		a.Status = c.State()
		a.GPUDevices = c.GPUDevices
	}
	return a
}

// YAML renders the sheet for export.
func (a Access) YAML() ([]byte, error) {
	out, err := yaml.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("actions: encode access: %w", err)
	}
	return out, nil
}

// Instructions renders the sheet as plain text.
func (a Access) Instructions() string {
	var b strings.Builder
	b.WriteString("GPU development environment\n\n")
	fmt.Fprintf(&b, "User:      %s\n", a.Username)
	if a.Password != "" {
		fmt.Fprintf(&b, "Password:  %s\n", a.Password)
	}
	fmt.Fprintf(&b, "Server:    %s\n", a.Host)
	if a.Container != "" {
		fmt.Fprintf(&b, "Container: %s (%s)\n", a.Container, a.Status)
	}
	b.WriteString("\nServices\n")
	fmt.Fprintf(&b, "  SSH:         %s\n", a.SSH)
	fmt.Fprintf(&b, "  VS Code:     %s\n", a.VSCode)
	fmt.Fprintf(&b, "  Jupyter Lab: %s\n", a.Jupyter)
	if a.TensorBoard != "" {
		fmt.Fprintf(&b, "  TensorBoard: %s\n", a.TensorBoard)
	}
	b.WriteString("\nDirectories\n")
	for _, d := range a.Directories {
		fmt.Fprintf(&b, "  %-18s %s\n", d.Path, d.Access)
	}
	b.WriteString("\nAll services use the same password.\n")
	return b.String()
}

func portText(p int) string {
	if p <= 0 {
		return "N/A"
	}
	return strconv.Itoa(p)
}

func serviceURL(host string, port int) string {
	if port <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}
