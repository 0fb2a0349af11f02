package main

import (
	"strings"
	"testing"
)

func TestRun_RequiresFlags(t *testing.T) {
	cases := []struct {
		name, username, email, want string
	}{
		{"no username", "", "a@x.com", "--username"},
		{"no email", "admin", "", "--email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := run(tc.username, tc.email, "")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

func TestRun_ReturnsDatabaseErrors(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	err := run("admin", "admin@example.com", "postgres://u:p@127.0.0.1:1/portfolio?sslmode=disable&connect_timeout=1")
	if err == nil || !strings.Contains(err.Error(), "init database") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	a, err := generateRandomPassword(24)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := generateRandomPassword(24)
	if len(a) != 32 || a == b {
		t.Fatalf("passwords %q %q", a, b)
	}
	if strings.ContainsAny(a, "+/=") {
		t.Fatalf("password %q is not url safe", a)
	}
}
