package dialog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/pricing"
)

// EditFlow: выбор поля → ввод значения → сохранение → снова выбор поля, пока не «Готово».
type EditFlow struct {
	tools ToolEditor
	log   *slog.Logger
}

func NewEditFlow(te ToolEditor, log *slog.Logger) *EditFlow {
	return &EditFlow{tools: te, log: log}
}

var fieldStates = map[Field]State{
	FieldName:        StateEditName,
	FieldDescription: StateEditDescription,
	FieldPrice:       StateEditPrice,
	FieldPhotos:      StateEditPhotos,
}

func (f *EditFlow) Begin(ctx context.Context, s *Session) (Reply, error) {
	if !s.Requester.Owner {
		return Reply{}, invalid(ErrForbidden)
	}
	if s.Target == nil || s.Target.ToolID == 0 {
		return Reply{}, invalid(ErrUnexpectedInput)
	}
	t, err := f.tools.GetByID(ctx, s.Target.ToolID)
	if err != nil {
		return Reply{}, err
	}
	if t == nil {
		return Reply{}, ErrNotFound
	}
	s.Target.ToolName = t.Name
	s.State = StateEditField
	return Reply{Tool: t}, nil
}

func (f *EditFlow) Handle(ctx context.Context, s *Session, in Input) (Reply, error) {
	id := s.Target.ToolID

	switch s.State {
	case StateEditField:
		switch in.Kind {
		case KindDone:
			s.State = StateFinalized
			return Reply{}, nil
		case KindField:
			if !in.Field.Valid() {
				return Reply{}, invalid(ErrUnexpectedInput)
			}
			if in.Field == FieldAvailability {
				// переключается сразу, без отдельного шага
				if _, err := f.tools.ToggleAvailable(ctx, id); err != nil {
					return Reply{}, mapToolErr(err)
				}
				return f.reload(ctx, id)
			}
			if in.Field == FieldPhotos {
				s.Tool = &ToolDraft{}
			}
			s.State = fieldStates[in.Field]
			return Reply{}, nil
		}
		return Reply{}, invalid(ErrUnexpectedInput)

	case StateEditName, StateEditDescription:
		text, err := nonEmpty(in)
		if err != nil {
			return Reply{}, err
		}
		p := tools.Patch{Name: &text}
		if s.State == StateEditDescription {
			p = tools.Patch{Description: &text}
		}
		return f.apply(ctx, s, p)

	case StateEditPrice:
		if in.Kind != KindText {
			return Reply{}, invalid(ErrUnexpectedInput)
		}
		price, err := pricing.ParsePrice(in.Text)
		if err != nil {
			return Reply{}, invalid(err)
		}
		return f.apply(ctx, s, tools.Patch{PricePerDay: &price})

	case StateEditPhotos:
		if s.Tool == nil {
			s.Tool = &ToolDraft{}
		}
		photos, done, err := collectPhoto(s.Tool.Photos, in)
		if err != nil {
			return Reply{}, err
		}
		s.Tool.Photos = photos
		if !done {
			return Reply{}, nil
		}
		// новый набор заменяет старый; /skip удаляет все фото
		if photos == nil {
			photos = []string{}
		}
		r, err := f.apply(ctx, s, tools.Patch{PhotoIDs: &photos})
		s.Tool = nil
		return r, err
	}
	return Reply{}, invalid(ErrUnexpectedInput)
}

func (f *EditFlow) apply(ctx context.Context, s *Session, p tools.Patch) (Reply, error) {
	t, err := f.tools.Update(ctx, s.Target.ToolID, p)
	if err != nil {
		return Reply{}, mapToolErr(err)
	}
	f.log.Info("tool updated", "tool_id", t.ID, "state", s.State)
	s.Target.ToolName = t.Name
	s.State = StateEditField
	return Reply{Tool: t}, nil
}

func (f *EditFlow) reload(ctx context.Context, id int64) (Reply, error) {
	t, err := f.tools.GetByID(ctx, id)
	if err != nil {
		return Reply{}, err
	}
	if t == nil {
		return Reply{}, ErrNotFound
	}
	return Reply{Tool: t}, nil
}

func mapToolErr(err error) error {
	if errors.Is(err, tools.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
