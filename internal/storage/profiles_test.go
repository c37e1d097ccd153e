package storage

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"bot_uni_schedule/internal/schedule"
)

func openTest(t *testing.T) *Profiles {
	t.Helper()
	p, err := Open(filepath.Join(t.TempDir(), "bot.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return p
}

func TestGetCreatesDefaults(t *testing.T) {
	p := openTest(t)

	prof, err := p.Get(42)
	if err != nil {
		t.Fatal(err)
	}
	if prof.ChatID != 42 {
		t.Errorf("chat id = %d", prof.ChatID)
	}
	if !prof.Reminders {
		t.Error("reminders should default to enabled")
	}
	if prof.Format != string(schedule.FormatFull) {
		t.Errorf("format = %q, want full", prof.Format)
	}
	if prof.GroupName != "" || prof.Subgroup != 0 {
		t.Errorf("group should start unset: %+v", prof)
	}
}

func TestSettingsPersist(t *testing.T) {
	p := openTest(t)

	if err := p.SetGroup(42, "353501"); err != nil {
		t.Fatal(err)
	}
	if err := p.SetSubgroup(42, 2); err != nil {
		t.Fatal(err)
	}
	if err := p.SetReminders(42, false); err != nil {
		t.Fatal(err)
	}
	if err := p.SetFormat(42, schedule.FormatToday); err != nil {
		t.Fatal(err)
	}

	prof, err := p.Get(42)
	if err != nil {
		t.Fatal(err)
	}
	if prof.GroupName != "353501" || prof.Subgroup != 2 {
		t.Errorf("group settings lost: %+v", prof)
	}
	if prof.Reminders {
		t.Error("reminders should be off")
	}
	if prof.Format != string(schedule.FormatToday) {
		t.Errorf("format = %q, want today", prof.Format)
	}
}

func TestUpdateCreatesMissingProfile(t *testing.T) {
	p := openTest(t)

	if err := p.SetGroup(7, "310801"); err != nil {
		t.Fatal(err)
	}
	prof, err := p.Get(7)
	if err != nil {
		t.Fatal(err)
	}
	if prof.GroupName != "310801" {
		t.Errorf("group = %q", prof.GroupName)
	}
	if !prof.Reminders {
		t.Error("lazily created profile should keep default reminders")
	}
}

func TestProfilesAreIndependent(t *testing.T) {
	p := openTest(t)

	if err := p.SetGroup(1, "AAA"); err != nil {
		t.Fatal(err)
	}
	if err := p.SetGroup(2, "BBB"); err != nil {
		t.Fatal(err)
	}

	a, _ := p.Get(1)
	b, _ := p.Get(2)
	if a.GroupName != "AAA" || b.GroupName != "BBB" {
		t.Errorf("profiles bled into each other: %+v %+v", a, b)
	}
}
