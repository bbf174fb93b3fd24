package actions

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/connermo/ai4s/internal/apiclient"
	"github.com/connermo/ai4s/internal/audit"
	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
)

var (
	ErrNotConfirmed  = errors.New("actions: destructive action not confirmed")
	ErrProtectedUser = errors.New("actions: the admin account cannot be deleted")
)

const (
	// ProtectedUsername is the built-in administrator account.
	ProtectedUsername = "admin"

	minUserPassword      = 6
	minContainerPassword = 8
)

// Reconciler is told about every mutation so it can re-sync the lists.
type Reconciler interface {
	AfterMutation(m refresh.Mutation, err error)
}

// Journal records completed mutations.
type Journal interface {
	Append(e audit.Entry) (audit.Entry, error)
}

// Service validates and performs admin mutations.
type Service struct {
	api     model.AdminAPI
	rec     Reconciler
	journal Journal
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records every mutation to j.
func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithClock overrides the time source for journal entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a service over api. rec may be nil.
func NewService(api model.AdminAPI, rec Reconciler, opts ...Option) *Service {
	s := &Service{api: api, rec: rec, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// API returns the underlying client.
func (s *Service) API() model.AdminAPI { return s.api }

// CreateUser creates an account. Username and password are required.
func (s *Service) CreateUser(ctx context.Context, in model.UserInput) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" {
		return model.User{}, apiclient.Validation("username", "username is required")
	}
	if in.Password == "" {
		return model.User{}, apiclient.Validation("password", "password is required")
	}
	u, err := s.api.CreateUser(ctx, in)
	s.finish(refresh.MutationCreateUser, in.Username, err)
	return u, err
}

// UpdateUser updates an account's profile. The password is never sent.
func (s *Service) UpdateUser(ctx context.Context, id int, in model.UserInput) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Password = ""
	if in.Username == "" {
		return model.User{}, apiclient.Validation("username", "username is required")
	}
	u, err := s.api.UpdateUser(ctx, id, in)
	s.finish(refresh.MutationUpdateUser, in.Username, err)
	return u, err
}

// DeleteUser removes an account after confirmation. The admin account is
// protected.
func (s *Service) DeleteUser(ctx context.Context, u model.User, confirmed bool) error {
	if u.Username == ProtectedUsername {
		return ErrProtectedUser
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	err := s.api.DeleteUser(ctx, u.ID)
	s.finish(refresh.MutationDeleteUser, u.Username, err)
	return err
}

// ChangePassword sets a user's login password. Both entries must match.
func (s *Service) ChangePassword(ctx context.Context, u model.User, password, confirm string) error {
	if len(password) < minUserPassword {
		return apiclient.Validation("password", "password must be at least 6 characters")
	}
	if password != confirm {
		return apiclient.Validation("confirm", "passwords do not match")
	}
	err := s.api.ChangePassword(ctx, u.ID, password)
	s.finish(refresh.MutationChangePassword, u.Username, err)
	return err
}

// CreateContainer provisions a container for a user without one.
func (s *Service) CreateContainer(ctx context.Context, in model.ContainerInput) (model.Container, error) {
	in.GPUDevices = strings.TrimSpace(in.GPUDevices)
	if in.UserID <= 0 {
		return model.Container{}, apiclient.Validation("user", "select a user")
	}
	if len(in.Password) < minContainerPassword {
		return model.Container{}, apiclient.Validation("password", "password must be at least 8 characters")
	}
	c, err := s.api.CreateContainer(ctx, in)
	s.finish(refresh.MutationCreateContainer, "user "+strconv.Itoa(in.UserID), err)
	return c, err
}

// StartContainer starts a stopped container.
func (s *Service) StartContainer(ctx context.Context, c model.Container) error {
	err := s.api.StartContainer(ctx, c.ID)
	s.finish(refresh.MutationStartContainer, containerLabel(c), err)
	return err
}

// StopContainer stops a running container.
func (s *Service) StopContainer(ctx context.Context, c model.Container) error {
	err := s.api.StopContainer(ctx, c.ID)
	s.finish(refresh.MutationStopContainer, containerLabel(c), err)
	return err
}

// DeleteContainer removes a container after confirmation.
func (s *Service) DeleteContainer(ctx context.Context, c model.Container, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	err := s.api.DeleteContainer(ctx, c.ID)
	s.finish(refresh.MutationDeleteContainer, containerLabel(c), err)
	return err
}

// ResetContainerPassword sets the password used by the container services.
func (s *Service) ResetContainerPassword(ctx context.Context, c model.Container, password string) error {
	if len(password) < minUserPassword {
		return apiclient.Validation("password", "password must be at least 6 characters")
	}
	err := s.api.ResetContainerPassword(ctx, c.ID, password)
	s.finish(refresh.MutationResetContainerPassword, containerLabel(c), err)
	return err
}

func (s *Service) finish(m refresh.Mutation, target string, err error) {
	if err != nil {
		log.Printf("actions: %s %s failed: %v", m, target, err)
	}
	if s.rec != nil {
		s.rec.AfterMutation(m, err)
	}
	if s.journal == nil {
		return
	}
	e := audit.Entry{At: s.now(), Action: m.String(), Target: target, OK: err == nil}
	if err != nil {
		e.Error = apiclient.Message(err, err.Error())
	}
	if _, jerr := s.journal.Append(e); jerr != nil {
		log.Printf("actions: audit append failed: %v", jerr)
	}
}

func containerLabel(c model.Container) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
