package handler

import (
	"context"

	"automarket/internal/domain/service/catalog"
	"automarket/internal/worker"
)

type runController interface {
	Start(ctx context.Context, mode catalog.Mode) (string, error)
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	TogglePause(ctx context.Context) (bool, error)
	Status() worker.Status
}

type Handler struct {
	runs runController
}

func New(runs runController) *Handler {
	return &Handler{
		runs: runs,
	}
}
