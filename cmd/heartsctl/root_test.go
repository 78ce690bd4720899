package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/cryptichearts/backend/internal/models"
)

const (
	amy = "did:example:amy"
	bob = "did:example:bob"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("heartsctl %v: %v\n%s", args, err, out.String())
	}
	return out.Bytes()
}

func TestHeartsctl_RoundTripThroughSnapshot(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("DATA_DIR", t.TempDir())

	run(t, "--did", amy, "follow", bob, "Bob")

	var followers []models.Follower
	if err := json.Unmarshal(run(t, "--did", bob, "followers"), &followers); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(followers))
	assert.Equal(t, amy, followers[0].DID)

	run(t, "--did", amy, "send", bob, "hello from the shell")
	var msgs []models.Message
	if err := json.Unmarshal(run(t, "--did", bob, "messages", amy), &msgs); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(msgs))
	assert.Equal(t, "hello from the shell", msgs[0].Content)
}

func TestHeartsctl_RequiresDID(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--did", "", "following"})
	assert.NotEqual(t, nil, rootCmd.Execute())
}

func TestHeartsctl_Reset(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("DATA_DIR", t.TempDir())

	run(t, "--did", amy, "follow", bob, "Bob")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"reset"})
	assert.NotEqual(t, nil, rootCmd.Execute())

	run(t, "reset", "--yes")
	resetConfirmed = false

	var following []models.Following
	if err := json.Unmarshal(run(t, "--did", amy, "following"), &following); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0, len(following))
}
