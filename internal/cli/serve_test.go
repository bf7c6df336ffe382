package cli

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_StartsAndStopsOnCancel(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "jobs.db")
	ready := make(chan string, 1)

	cmd := newServeCommand(&ServeOptions{RootOptions: &RootOptions{Format: "text"}, ready: ready})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--addr", "127.0.0.1:0", "--token", "t"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd.SetContext(ctx)

	errc := make(chan error, 1)
	go func() { errc <- cmd.Execute() }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-errc:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not start")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/v1/backends", nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
	assert.Contains(t, buf.String(), "Listening on "+addr)
}

func TestServe_RequiresDatabase(t *testing.T) {
	_, stderr, code := runCLI(t, "serve")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "db")
}
