package model

// Summary holds the dashboard counters.
type Summary struct {
	TotalUsers        int `json:"total_users"`
	ActiveUsers       int `json:"active_users"`
	TotalContainers   int `json:"total_containers"`
	RunningContainers int `json:"running_containers"`
	StoppedContainers int `json:"stopped_containers"`
}

// Summarize computes dashboard counters from the latest lists.
func Summarize(users []User, containers []Container) Summary {
	s := Summary{
		TotalUsers:      len(users),
		TotalContainers: len(containers),
	}
	for _, u := range users {
		if u.IsActive {
			s.ActiveUsers++
		}
	}
	for _, c := range containers {
		if c.IsRunning() {
			s.RunningContainers++
		} else {
			s.StoppedContainers++
		}
	}
	return s
}
