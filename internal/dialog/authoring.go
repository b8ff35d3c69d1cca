package dialog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/pricing"
)

// AuthoringFlow: название → описание → цена → фото → подтверждение.
type AuthoringFlow struct {
	tools ToolWriter
	log   *slog.Logger
}

func NewAuthoringFlow(tw ToolWriter, log *slog.Logger) *AuthoringFlow {
	return &AuthoringFlow{tools: tw, log: log}
}

func (f *AuthoringFlow) Begin(_ context.Context, s *Session) (Reply, error) {
	if !s.Requester.Owner {
		return Reply{}, invalid(ErrForbidden)
	}
	s.State = StateToolName
	s.Tool = &ToolDraft{}
	return Reply{}, nil
}

func (f *AuthoringFlow) Handle(ctx context.Context, s *Session, in Input) (Reply, error) {
	d := s.Tool
	if d == nil {
		return Reply{}, ErrNoDialog
	}

	switch s.State {
	case StateToolName:
		name, err := nonEmpty(in)
		if err != nil {
			return Reply{}, err
		}
		d.Name = name
		s.State = StateToolDescription

	case StateToolDescription:
		desc, err := nonEmpty(in)
		if err != nil {
			return Reply{}, err
		}
		d.Description = desc
		s.State = StateToolPrice

	case StateToolPrice:
		if in.Kind != KindText {
			return Reply{}, invalid(ErrUnexpectedInput)
		}
		price, err := pricing.ParsePrice(in.Text)
		if err != nil {
			return Reply{}, invalid(err)
		}
		d.Price = price
		s.State = StateToolPhotos

	case StateToolPhotos:
		photos, done, err := collectPhoto(d.Photos, in)
		if err != nil {
			return Reply{}, err
		}
		d.Photos = photos
		if done {
			s.State = StateToolConfirm
		}

	case StateToolConfirm:
		if in.Kind != KindConfirm {
			return Reply{}, invalid(ErrUnexpectedInput)
		}
		t, err := f.tools.Create(ctx, tools.Tool{
			Name:        d.Name,
			Description: d.Description,
			PricePerDay: d.Price,
			PhotoIDs:    d.Photos,
			Available:   true,
		})
		if err != nil {
			return Reply{}, err
		}
		f.log.Info("tool created", "tool_id", t.ID, "name", t.Name)
		s.State = StateFinalized
		return Reply{Tool: t}, nil

	default:
		return Reply{}, invalid(ErrUnexpectedInput)
	}
	return Reply{}, nil
}

// nonEmpty возвращает текст как прислан; пустым считается текст из одних пробелов.
func nonEmpty(in Input) (string, error) {
	if in.Kind != KindText {
		return "", invalid(ErrUnexpectedInput)
	}
	if strings.TrimSpace(in.Text) == "" {
		return "", invalid(ErrEmptyText)
	}
	return in.Text, nil
}

// collectPhoto добавляет фото в набор. done — сбор закончен: /done, /skip
// (очищает набор) или достигнут лимит tools.MaxPhotos.
func collectPhoto(photos []string, in Input) ([]string, bool, error) {
	switch in.Kind {
	case KindPhoto:
		if in.FileID == "" {
			return photos, false, invalid(ErrUnexpectedInput)
		}
		next := make([]string, 0, len(photos)+1)
		next = append(next, photos...)
		next = append(next, in.FileID)
		return next, len(next) >= tools.MaxPhotos, nil
	case KindDone:
		return photos, true, nil
	case KindSkip:
		return nil, true, nil
	}
	return photos, false, invalid(ErrUnexpectedInput)
}
