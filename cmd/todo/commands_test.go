package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/gin-gonic/gin"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todo-planner/internal/client"
	"github.com/adanyl0v/todo-planner/internal/delivery/http/api"
	"github.com/adanyl0v/todo-planner/internal/models"
	"github.com/adanyl0v/todo-planner/internal/services"
	"github.com/adanyl0v/todo-planner/internal/storage/storagetest"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newAPIServer(t *testing.T) string {
	t.Helper()
	svc := services.NewTaskService(zerolog.Nop(), storagetest.NewMemoryTaskStore(), nil)
	server := httptest.NewServer(api.NewRouter(zerolog.Nop(), svc, api.RouterOptions{}))
	t.Cleanup(server.Close)
	return server.URL + "/api"
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	apiURL := newAPIServer(t)

	out, err := execute(t, "--api", apiURL, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found for this status.")

	out, err = execute(t, "--api", apiURL, "add", "--title", "Buy milk", "--due", "2025-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Task added successfully!")

	tasks, err := client.New(apiURL).List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	out, err = execute(t, "--api", apiURL, "status", id, "In", "Progress")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk is now In Progress\n", out)

	out, err = execute(t, "--api", apiURL, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Jan 2")

	out, err = execute(t, "--api", apiURL, "list", "--status", string(models.StatusCompleted))
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found for this status.")

	out, err = execute(t, "--api", apiURL, "rm", id)
	require.NoError(t, err)
	assert.Equal(t, "Task deleted.\n", out)

	_, err = execute(t, "--api", apiURL, "rm", id)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Todo not found", apiErr.Message)
}

func TestCommands_RejectBadInput(t *testing.T) {
	apiURL := newAPIServer(t)

	_, err := execute(t, "--api", apiURL, "add", "--title", "x")
	assert.Error(t, err)

	_, err = execute(t, "--api", apiURL, "status", "id", "Done")
	assert.ErrorIs(t, err, models.ErrUnknownStatus)

	_, err = execute(t, "--api", apiURL, "list", "--status", "Archived")
	assert.ErrorIs(t, err, models.ErrUnknownStatus)
}
