package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
)

type fakeMigrator struct {
	upErr      error
	downErr    error
	versionErr error
	version    uint
	steps      int
	forced     int
	calls      []string
}

func (f *fakeMigrator) Up() error   { f.calls = append(f.calls, "up"); return f.upErr }
func (f *fakeMigrator) Down() error { f.calls = append(f.calls, "down"); return f.downErr }

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return f.version, false, f.versionErr
}

func (f *fakeMigrator) Force(v int) error {
	f.calls = append(f.calls, "force")
	f.forced = v
	return nil
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		m        *fakeMigrator
		command  string
		args     []string
		wantCall string
		wantErr  string
	}{
		{name: "up", m: &fakeMigrator{}, command: "up", wantCall: "up"},
		{name: "up without changes", m: &fakeMigrator{upErr: migrate.ErrNoChange}, command: "up", wantCall: "up"},
		{name: "up failure", m: &fakeMigrator{upErr: errors.New("boom")}, command: "up", wantCall: "up", wantErr: "failed to run migrations"},
		{name: "down without changes", m: &fakeMigrator{downErr: migrate.ErrNoChange}, command: "down", wantCall: "down"},
		{name: "steps", m: &fakeMigrator{}, command: "steps", args: []string{"-1"}, wantCall: "steps"},
		{name: "steps without count", m: &fakeMigrator{}, command: "steps", wantErr: "requires a number"},
		{name: "version", m: &fakeMigrator{version: 1}, command: "version", wantCall: "version"},
		{name: "version before any migration", m: &fakeMigrator{versionErr: migrate.ErrNilVersion}, command: "version", wantCall: "version"},
		{name: "force", m: &fakeMigrator{}, command: "force", args: []string{"1"}, wantCall: "force"},
		{name: "force bad version", m: &fakeMigrator{}, command: "force", args: []string{"one"}, wantErr: "invalid number"},
		{name: "unknown", m: &fakeMigrator{}, command: "sideways", wantErr: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.m, tt.command, tt.args)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantCall != "" && (len(tt.m.calls) != 1 || tt.m.calls[0] != tt.wantCall) {
				t.Errorf("expected a single %s call, got %v", tt.wantCall, tt.m.calls)
			}
		})
	}
}

func TestRunPassesNumbers(t *testing.T) {
	m := &fakeMigrator{}
	if err := run(m, "steps", []string{"2"}); err != nil {
		t.Fatal(err)
	}
	if err := run(m, "force", []string{"1"}); err != nil {
		t.Fatal(err)
	}
	if m.steps != 2 || m.forced != 1 {
		t.Errorf("expected steps=2 forced=1, got steps=%d forced=%d", m.steps, m.forced)
	}
}
