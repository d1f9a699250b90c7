package cliconfig

import (
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHost(t *testing.T) {
	tests := []struct {
		server  string
		want    string
		wantErr bool
	}{
		{server: "localhost:3120", want: "localhost:3120"},
		{server: "http://vault.noona:3120/", want: "vault.noona:3120"},
		{server: "https://vault.noona", want: "vault.noona"},
		{server: "http://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			got, err := Host(tt.server)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Host() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Host() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := Load(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load() without file error = %v, want os.ErrNotExist", err)
	}

	cfg := &CLIConfig{}
	id := &Identity{Service: "noona-moon", PrivateKeyFile: "/keys/noona-moon.pem"}
	if err := cfg.SetIdentity("http://localhost:3120", id); err != nil {
		t.Fatal(err)
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, err := loaded.GetIdentity("localhost:3120")
	if err != nil {
		t.Fatalf("GetIdentity() error = %v", err)
	}
	if diff := cmp.Diff(id, got); diff != "" {
		t.Errorf("identity mismatch (-want +got):\n%s", diff)
	}

	if _, err := loaded.GetIdentity("localhost:9999"); !errors.Is(err, ErrIdentityNotFound) {
		t.Errorf("GetIdentity() for unknown server error = %v, want ErrIdentityNotFound", err)
	}
}
