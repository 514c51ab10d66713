package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/apitest"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_SeedsUser(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SeedEmail, cfg.SeedUsername, cfg.SeedPassword = "a@b.com", "alice", "pw"

	app, err := NewApp(cfg, logging.Discard())
	require.NoError(t, err)

	id := app.api.Identity(1)
	require.NotNil(t, id)
	assert.Equal(t, "alice", id.Username)
	assert.True(t, id.EmailVerified)
}

func TestServe_AnswersAndShutsDown(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SeedEmail, cfg.SeedUsername, cfg.SeedPassword = "a@b.com", "alice", "pw"

	app, err := NewApp(cfg, logging.Discard())
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, l) }()

	body, _ := json.Marshal(map[string]string{"email": "alice", "password": "pw"})
	resp, err := http.Post("http://"+l.Addr().String()+apitest.BasePath+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("server did not shut down")
	}
}
