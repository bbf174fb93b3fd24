package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/actions"
	"github.com/connermo/ai4s/internal/apiclient"
	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
)

const actionTimeout = 30 * time.Second

// mutate runs fn off the event loop and reports the outcome.
func (m *AdminModel) mutate(formID, success string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return mutationDoneMsg{formID: formID, success: success, err: fn(ctx)}
	}
}

func (m *AdminModel) newUserForm() *FormModal {
	fields := []formField{
		newTextField("username", "Username", "", "jdoe", false),
		newTextField("email", "Email", "", "jdoe@example.com", false),
		newPasswordField("password", "Password", true),
	}
	const id = "form-new-user"
	return NewFormModal(id, "New user", fields, func(v formValues, _ *model.User) tea.Cmd {
		active := true
		in := model.UserInput{Username: v["username"], Email: v["email"], Password: v["password"], IsActive: &active}
		return m.mutate(id, "User "+strings.TrimSpace(in.Username)+" created", func(ctx context.Context) error {
			_, err := m.svc.CreateUser(ctx, in)
			return err
		})
	})
}

func (m *AdminModel) editUserForm(u model.User) *FormModal {
	active := "yes"
	if !u.IsActive {
		active = "no"
	}
	fields := []formField{
		newTextField("username", "Username", u.Username, "", false),
		newTextField("email", "Email", u.Email, "", false),
		newTextField("active", "Active (yes/no)", active, "yes", false),
	}
	const id = "form-edit-user"
	return NewFormModal(id, "Edit user "+u.Username, fields, func(v formValues, _ *model.User) tea.Cmd {
		isActive, err := parseYesNo(v["active"])
		if err != nil {
			return func() tea.Msg { return mutationDoneMsg{formID: id, err: err} }
		}
		in := model.UserInput{Username: v["username"], Email: v["email"], IsActive: &isActive}
		return m.mutate(id, "User "+strings.TrimSpace(in.Username)+" updated", func(ctx context.Context) error {
			_, err := m.svc.UpdateUser(ctx, u.ID, in)
			return err
		})
	})
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	}
	return false, apiclient.Validation("active", "active must be yes or no")
}

func (m *AdminModel) userPasswordForm(u model.User) *FormModal {
	fields := []formField{
		newPasswordField("password", "New password", false),
		newPasswordField("confirm", "Confirm password", false),
	}
	const id = "form-user-password"
	return NewFormModal(id, "Change password for "+u.Username, fields, func(v formValues, _ *model.User) tea.Cmd {
		return m.mutate(id, "Password changed for "+u.Username, func(ctx context.Context) error {
			return m.svc.ChangePassword(ctx, u, v["password"], v["confirm"])
		})
	})
}

// openContainerForm starts the available-users load and opens the form.
func (m *AdminModel) openContainerForm() tea.Cmd {
	m.options = refresh.Options{Status: refresh.OptionsLoading, MaxRetries: m.options.MaxRetries}
	m.ctrl.LoadOptionsWithRetry(0)

	fields := []formField{
		newTextField("gpus", "GPU devices", "", "0,1 (empty for none)", false),
		newPasswordField("password", "Container password", true),
	}
	const id = "form-new-container"
	picker := newUserPicker(func() refresh.Options { return m.options })
	form := NewFormModal(id, "New container", fields, func(v formValues, u *model.User) tea.Cmd {
		in := model.ContainerInput{GPUDevices: v["gpus"], Password: v["password"]}
		label := "Container created"
		if u != nil {
			in.UserID = u.ID
			label = "Container created for " + u.DisplayName()
		}
		return m.mutate(id, label, func(ctx context.Context) error {
			_, err := m.svc.CreateContainer(ctx, in)
			return err
		})
	}).WithPicker(picker)
	m.PushModal(form)
	return m.startTick()
}

func (m *AdminModel) resetPasswordForm(c model.Container) *FormModal {
	fields := []formField{newPasswordField("password", "New container password", true)}
	const id = "form-container-password"
	return NewFormModal(id, "Reset password for "+containerLabel(c), fields, func(v formValues, _ *model.User) tea.Cmd {
		return m.mutate(id, "Container password reset", func(ctx context.Context) error {
			return m.svc.ResetContainerPassword(ctx, c, v["password"])
		})
	})
}

func (m *AdminModel) deleteUserCmd(u model.User) tea.Cmd {
	return m.mutate("", "User "+u.Username+" deleted", func(ctx context.Context) error {
		return m.svc.DeleteUser(ctx, u, true)
	})
}

func (m *AdminModel) deleteContainerCmd(c model.Container) tea.Cmd {
	return m.mutate("", "Container "+containerLabel(c)+" deleted", func(ctx context.Context) error {
		return m.svc.DeleteContainer(ctx, c, true)
	})
}

func (m *AdminModel) startContainerCmd(c model.Container) tea.Cmd {
	return m.mutate("", "Container "+containerLabel(c)+" starting", func(ctx context.Context) error {
		return m.svc.StartContainer(ctx, c)
	})
}

func (m *AdminModel) stopContainerCmd(c model.Container) tea.Cmd {
	return m.mutate("", "Container "+containerLabel(c)+" stopping", func(ctx context.Context) error {
		return m.svc.StopContainer(ctx, c)
	})
}

func (m *AdminModel) loadAccessCmd(userID int) tea.Cmd {
	api, host := m.svc.API(), m.serverHost
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		a, err := actions.LoadAccess(ctx, api, userID, host, "")
		return accessLoadedMsg{access: a, err: err}
	}
}

func (m *AdminModel) newAccessModal(a actions.Access) *DetailModal {
	return NewDetailModal(m.modalContext(), "access", "Access: "+a.Username, a.Instructions()).
		WithExport(func() tea.Cmd { return exportAccessCmd(m.exportDir, a) })
}

// exportAccessCmd writes the access sheet as YAML into dir.
func exportAccessCmd(dir string, a actions.Access) tea.Cmd {
	return func() tea.Msg {
		data, err := a.YAML()
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, fmt.Sprintf("ai4s-access-%s.yml", a.Username))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func userDetails(u model.User, containers []model.Container) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:          %d\n", u.ID)
	fmt.Fprintf(&b, "Username:    %s\n", u.Username)
	fmt.Fprintf(&b, "Email:       %s\n", u.Email)
	fmt.Fprintf(&b, "Active:      %t\n", u.IsActive)
	fmt.Fprintf(&b, "Admin:       %t\n", u.IsAdmin)
	fmt.Fprintf(&b, "Base port:   %d\n", u.BasePort)
	fmt.Fprintf(&b, "Created:     %s\n", formatTime(u.CreatedAt))
	fmt.Fprintf(&b, "Updated:     %s\n", formatTime(u.UpdatedAt))
	fmt.Fprintf(&b, "Last login:  %s\n", formatTime(u.LastLogin))
	b.WriteString("\nContainer\n")
	if !u.HasContainer() {
		b.WriteString("  none\n")
		return b.String()
	}
	for _, c := range containers {
		if c.ID == u.ContainerID || c.UserID == u.ID {
			fmt.Fprintf(&b, "  %s  %s  GPUs: %s\n", containerLabel(c), c.State(), c.GPUDevices)
			return b.String()
		}
	}
	fmt.Fprintf(&b, "  %s\n", shortID(u.ContainerID))
	return b.String()
}

func containerDetails(c model.Container, users []model.User) string {
	owner := fmt.Sprintf("#%d", c.UserID)
	for _, u := range users {
		if u.ID == c.UserID {
			owner = u.Username
			break
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ID:        %s\n", c.ID)
	fmt.Fprintf(&b, "Name:      %s\n", c.Name)
	fmt.Fprintf(&b, "Owner:     %s\n", owner)
	fmt.Fprintf(&b, "Status:    %s\n", lipgloss.NewStyle().Foreground(statusColor(c.Status)).Render(c.Status))
	if c.ActualStatus != "" && c.ActualStatus != c.Status {
		fmt.Fprintf(&b, "Runtime:   %s\n", c.ActualStatus)
	}
	fmt.Fprintf(&b, "Image:     %s\n", c.ImageName)
	fmt.Fprintf(&b, "GPUs:      %s\n", c.GPUDevices)
	fmt.Fprintf(&b, "CPU:       %s\n", c.CPULimit)
	fmt.Fprintf(&b, "Memory:    %s\n", c.MemoryLimit)
	fmt.Fprintf(&b, "Created:   %s\n", formatTime(c.CreatedAt))
	b.WriteString("\ni: access info | p: reset password | s/x: start/stop\n")
	return b.String()
}
