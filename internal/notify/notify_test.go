package notify

import (
	"testing"
	"time"
)

func TestActiveExpiresBySeverity(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	c := NewCenter(0)

	c.Push(Success, "user created", now)
	c.Push(Danger, "delete failed", now)

	if got := len(c.Active(now.Add(2 * time.Second))); got != 2 {
		t.Fatalf("active at 2s = %d, want 2", got)
	}
	active := c.Active(now.Add(3 * time.Second))
	if len(active) != 1 || active[0].Severity != Danger {
		t.Fatalf("active at 3s = %+v, want only danger", active)
	}
	if got := len(c.Active(now.Add(5 * time.Second))); got != 0 {
		t.Fatalf("active at 5s = %d, want 0", got)
	}
}

func TestPushEvictsOldest(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	c := NewCenter(2)
	first := c.Push(Info, "a", now)
	c.Push(Info, "b", now)
	c.Push(Warning, "c", now)

	active := c.Active(now)
	if len(active) != 2 || active[0].Message != "b" || active[1].Message != "c" {
		t.Fatalf("active = %+v, want [b c]", active)
	}
	if c.Dismiss(first.ID) {
		t.Fatal("Dismiss found an evicted notification")
	}
}

func TestDismiss(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	c := NewCenter(0)
	n := c.Push(Warning, "slow", now)
	if !c.Dismiss(n.ID) {
		t.Fatal("Dismiss returned false")
	}
	if got := len(c.Active(now)); got != 0 {
		t.Fatalf("active after Dismiss = %d, want 0", got)
	}
}

func TestSeverityString(t *testing.T) {
	t.Parallel()
	for sev, want := range map[Severity]string{Info: "info", Success: "success", Warning: "warning", Danger: "danger"} {
		if got := sev.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", sev, got, want)
		}
	}
}
