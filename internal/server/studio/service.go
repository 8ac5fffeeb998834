// Package studio contains the generation pipeline: prompt in, image out,
// history item appended, notification pushed. All heavy lifting happens in
// the collaborators; failures end here as a notification plus an error, never
// as a retry.
package studio

import (
	"context"
	"fmt"
	"strings"

	"github.com/mzarzor/imagestudio/internal/common"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/blob"
	"github.com/mzarzor/imagestudio/internal/server/genapi"
	"github.com/mzarzor/imagestudio/internal/server/history"
	"github.com/mzarzor/imagestudio/internal/server/models"
	"github.com/mzarzor/imagestudio/internal/server/notify"
	"github.com/mzarzor/imagestudio/internal/server/settings"
)

// Service orchestrates generation and smart-tool application.
type Service struct {
	gen      genapi.Generator
	images   blob.ImageStore
	history  *history.Log
	notify   *notify.Queue
	settings *settings.Manager
	logger   logging.Logger
}

func NewService(gen genapi.Generator, images blob.ImageStore, hist *history.Log, queue *notify.Queue, set *settings.Manager, logger logging.Logger) *Service {
	return &Service{
		gen:      gen,
		images:   images,
		history:  hist,
		notify:   queue,
		settings: set,
		logger:   logger.With("module", "studio"),
	}
}

// Generate renders prompt into an image, stores it, and records the history
// item. An empty prompt is a validation error and mutates nothing. A
// collaborator failure is surfaced as a failure notification plus the error.
func (s *Service) Generate(ctx context.Context, prompt, model string) (models.HistoryItem, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.HistoryItem{}, common.ErrorEmptyPrompt
	}
	if model == "" {
		model = s.settings.SiteConfig(ctx).DefaultModel
	}

	data, err := s.gen.Generate(ctx, prompt, model)
	if err != nil {
		s.fail(ctx, "Generation failed", err)
		return models.HistoryItem{}, err
	}

	return s.finish(ctx, data, prompt, model, models.HistoryGeneration, "Image ready")
}

// ApplyTool runs one of the smart tools over input image bytes.
func (s *Service) ApplyTool(ctx context.Context, tool string, image []byte, prompt string) (models.HistoryItem, error) {
	switch tool {
	case genapi.ToolRemoveBackground, genapi.ToolUpscale, genapi.ToolRestyle:
	default:
		return models.HistoryItem{}, fmt.Errorf("unknown tool %q", tool)
	}
	if len(image) == 0 {
		return models.HistoryItem{}, fmt.Errorf("no input image")
	}

	data, err := s.gen.Transform(ctx, tool, image, prompt)
	if err != nil {
		s.fail(ctx, "Tool failed", err)
		return models.HistoryItem{}, err
	}

	return s.finish(ctx, data, prompt, tool, models.HistoryTool, "Tool applied")
}

func (s *Service) finish(ctx context.Context, data []byte, prompt, model, typ, title string) (models.HistoryItem, error) {
	key, err := s.images.Put(ctx, data, "image/png")
	if err != nil {
		s.fail(ctx, "Upload failed", err)
		return models.HistoryItem{}, err
	}

	url, err := s.images.PresignGet(ctx, key)
	if err != nil {
		s.fail(ctx, "Upload failed", err)
		return models.HistoryItem{}, err
	}

	item, err := s.history.Add(ctx, url, prompt, model, typ)
	if err != nil {
		s.logger.Error(ctx, "history write-back failed", "error", err)
		return models.HistoryItem{}, err
	}

	s.notify.Push(title, prompt, models.NotificationSuccess)
	s.logger.Info(ctx, "image stored", "key", key, "type", typ)
	return item, nil
}

// fail pushes the user-visible failure notification. The underlying error
// stays in the logs; the toast carries a generic description.
func (s *Service) fail(ctx context.Context, title string, err error) {
	s.logger.Error(ctx, "studio operation failed", "error", err)
	s.notify.Push(title, "Something went wrong. Please try again.", models.NotificationError)
}
