package refresh

// Mutation identifies an admin action that changes server state.
type Mutation int

const (
	MutationCreateUser Mutation = iota
	MutationUpdateUser
	MutationDeleteUser
	MutationChangePassword
	MutationCreateContainer
	MutationStartContainer
	MutationStopContainer
	MutationDeleteContainer
	MutationResetContainerPassword
)

func (m Mutation) String() string {
	switch m {
	case MutationCreateUser:
		return "create-user"
	case MutationUpdateUser:
		return "update-user"
	case MutationDeleteUser:
		return "delete-user"
	case MutationChangePassword:
		return "change-password"
	case MutationCreateContainer:
		return "create-container"
	case MutationStartContainer:
		return "start-container"
	case MutationStopContainer:
		return "stop-container"
	case MutationDeleteContainer:
		return "delete-container"
	case MutationResetContainerPassword:
		return "reset-container-password"
	}
	return "unknown"
}

// Affects lists the targets whose data the mutation can change.
func (m Mutation) Affects() []TargetID {
	switch m {
	case MutationCreateUser, MutationDeleteUser:
		return []TargetID{TargetUsers, TargetUserOptions}
	case MutationUpdateUser, MutationChangePassword:
		return []TargetID{TargetUsers}
	case MutationCreateContainer, MutationDeleteContainer:
		return []TargetID{TargetContainers, TargetUsers, TargetUserOptions}
	case MutationStartContainer, MutationStopContainer, MutationResetContainerPassword:
		return []TargetID{TargetContainers}
	}
	return nil
}

// Async reports whether the backend applies the mutation after replying,
// so a settle refresh is needed to observe the final state.
func (m Mutation) Async() bool {
	switch m {
	case MutationCreateContainer, MutationStartContainer, MutationStopContainer:
		return true
	}
	return false
}
