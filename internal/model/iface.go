package model

import "context"

// FetchOpts holds per-request options for list reads.
type FetchOpts struct {
	NoCache bool // attach cache-defeating headers
}

// Lister provides the list reads the refresh controller polls.
type Lister interface {
	ListUsers(ctx context.Context, opts FetchOpts) ([]User, error)
	ListContainers(ctx context.Context, opts FetchOpts) ([]Container, error)
}

// UserAdmin provides user management calls.
type UserAdmin interface {
	GetUser(ctx context.Context, id int) (User, error)
	CreateUser(ctx context.Context, in UserInput) (User, error)
	UpdateUser(ctx context.Context, id int, in UserInput) (User, error)
	DeleteUser(ctx context.Context, id int) error
	ChangePassword(ctx context.Context, id int, password string) error
}

// ContainerAdmin provides container lifecycle calls.
type ContainerAdmin interface {
	UserContainer(ctx context.Context, userID int) (UserContainer, error)
	CreateContainer(ctx context.Context, in ContainerInput) (Container, error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	DeleteContainer(ctx context.Context, id string) error
	ResetContainerPassword(ctx context.Context, id, password string) error
}

// AdminAPI is the full admin contract consumed by the console.
type AdminAPI interface {
	Lister
	UserAdmin
	ContainerAdmin
}
