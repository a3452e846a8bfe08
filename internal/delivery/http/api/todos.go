package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/todo-planner/internal/models"
	"github.com/adanyl0v/todo-planner/internal/services"
)

type todoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newTodoResponse(task *models.Task) todoResponse {
	return todoResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type todoEnvelope struct {
	Message string       `json:"message"`
	Todo    todoResponse `json:"todo"`
}

type todosEnvelope struct {
	Message string         `json:"message"`
	Todos   []todoResponse `json:"todos"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
}

func (h *handlerImpl) HandleCreateTodo(c *gin.Context) {
	var req createTodoRequest
	err := c.ShouldBindJSON(&req)
	// An empty body binds as an empty request.
	if err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDCtxKey)).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		abort(c, fromServiceError(err, "Error creating todo"))
		return
	}

	c.JSON(http.StatusCreated, todoEnvelope{
		Message: "Todo created successfully",
		Todo:    newTodoResponse(task),
	})
}

func (h *handlerImpl) HandleGetTodos(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c.Request.Context())
	if err != nil {
		abort(c, fromServiceError(err, "Error fetching todos"))
		return
	}

	response := make([]todoResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTodoResponse(task)
	}

	c.JSON(http.StatusOK, todosEnvelope{
		Message: "Todos fetched successfully",
		Todos:   response,
	})
}

type updateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

func (h *handlerImpl) HandleUpdateTodo(c *gin.Context) {
	var req updateTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDCtxKey)).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), services.UpdateTaskParams{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		abort(c, fromServiceError(err, "Error updating todo"))
		return
	}

	c.JSON(http.StatusOK, todoEnvelope{
		Message: "Todo updated successfully",
		Todo:    newTodoResponse(task),
	})
}

func (h *handlerImpl) HandleDeleteTodo(c *gin.Context) {
	err := h.tasks.DeleteTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, fromServiceError(err, "Error deleting todo"))
		return
	}

	c.JSON(http.StatusOK, messageEnvelope{Message: "Todo deleted successfully"})
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.healthTimeout)
	defer cancel()

	err := h.tasks.Ping(ctx)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("store is unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
