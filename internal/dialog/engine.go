package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/infra/metrics"
)

// Reply — результат шага: новое состояние и всё, что нужно для отрисовки.
type Reply struct {
	Flow    Flow
	State   State
	Session Session
	// Month — месяц календаря для состояний выбора даты.
	Month time.Time
	// Err — причина отказа; состояние при этом не меняется.
	Err error

	Tool    *tools.Tool
	Booking *bookings.Booking
}

// Handler — один сценарий. Begin ставит начальное состояние, Handle делает шаг.
// Обработчик меняет сессию только после успешной проверки ввода.
type Handler interface {
	Begin(ctx context.Context, s *Session) (Reply, error)
	Handle(ctx context.Context, s *Session, in Input) (Reply, error)
}

// Engine маршрутизирует ввод в активный сценарий пользователя и сохраняет результат.
type Engine struct {
	store Store
	flows map[Flow]Handler
	log   *slog.Logger
	now   func() time.Time
}

func NewEngine(store Store, log *slog.Logger) *Engine {
	return &Engine{store: store, flows: make(map[Flow]Handler), log: log, now: time.Now}
}

func (e *Engine) Register(flow Flow, h Handler) { e.flows[flow] = h }

// Active возвращает текущую сессию пользователя или nil.
func (e *Engine) Active(ctx context.Context, userID int64) (*Session, error) {
	return e.store.Get(ctx, userID)
}

// Start начинает сценарий. Предыдущий диалог заменяется только когда новый
// принят: отказ в Begin оставляет его как есть. seed — шаги, известные заранее
// (например, инструмент из кнопки «Забронировать»).
func (e *Engine) Start(ctx context.Context, req Requester, flow Flow, target *Target, seed ...Input) (Reply, error) {
	h, ok := e.flows[flow]
	if !ok {
		return Reply{}, fmt.Errorf("%w: %s", ErrUnknownFlow, flow)
	}

	s := &Session{Requester: req, Flow: flow, Target: target}
	r, err := h.Begin(ctx, s)
	if err != nil {
		// сценарий не начался, хранилище не трогаем
		s.State = StateCancelled
		return e.fail(flow, s, r, err)
	}
	for _, in := range seed {
		if r, err = h.Handle(ctx, s, in); err != nil {
			// сессия до шага уже валидна: сохраняем её поверх старой и переспрашиваем
			if IsValidation(err) {
				if serr := e.save(ctx, s); serr != nil {
					return Reply{}, serr
				}
			}
			return e.fail(flow, s, r, err)
		}
	}
	// Save перезаписывает сессию по user_id, терминальный шаг сбрасывает её в commit
	return e.commit(ctx, s, r)
}

// Handle применяет ввод к активному диалогу. Cancel из любого состояния
// завершает диалог и стирает накопленные данные.
func (e *Engine) Handle(ctx context.Context, userID int64, in Input) (Reply, error) {
	s, err := e.store.Get(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if s == nil {
		return Reply{}, ErrNoDialog
	}

	if in.Kind == KindCancel {
		if err := e.store.Reset(ctx, userID); err != nil {
			return Reply{}, err
		}
		s.State = StateCancelled
		metrics.DialogTransitions.WithLabelValues(string(s.Flow), string(s.State)).Inc()
		return Reply{Flow: s.Flow, State: StateCancelled, Session: *s}, nil
	}

	h, ok := e.flows[s.Flow]
	if !ok {
		if err := e.store.Reset(ctx, userID); err != nil {
			e.log.Error("dialog reset failed", "err", err, "user_id", userID)
		}
		return Reply{}, fmt.Errorf("%w: %s", ErrUnknownFlow, s.Flow)
	}

	before := *s
	r, err := h.Handle(ctx, s, in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if rerr := e.store.Reset(ctx, userID); rerr != nil {
				e.log.Error("dialog reset failed", "err", rerr, "user_id", userID)
			}
		}
		return e.fail(s.Flow, &before, r, err)
	}
	return e.commit(ctx, s, r)
}

// Cancel сбрасывает диалог пользователя; false, если его не было.
func (e *Engine) Cancel(ctx context.Context, userID int64) (bool, error) {
	r, err := e.Handle(ctx, userID, Cancel())
	if errors.Is(err, ErrNoDialog) {
		return false, nil
	}
	return err == nil && r.State == StateCancelled, err
}

func (e *Engine) commit(ctx context.Context, s *Session, r Reply) (Reply, error) {
	if s.State.Terminal() {
		if err := e.store.Reset(ctx, s.Requester.UserID); err != nil {
			e.log.Error("dialog reset failed", "err", err, "user_id", s.Requester.UserID)
		}
	} else if err := e.save(ctx, s); err != nil {
		return Reply{}, err
	}

	metrics.DialogTransitions.WithLabelValues(string(s.Flow), string(s.State)).Inc()
	e.log.Debug("dialog step", "user_id", s.Requester.UserID, "flow", s.Flow, "state", s.State)

	r.Flow = s.Flow
	r.State = s.State
	r.Session = *s
	return r, nil
}

func (e *Engine) save(ctx context.Context, s *Session) error {
	s.UpdatedAt = e.now()
	return e.store.Save(ctx, s)
}

// fail: ошибки валидации превращаются в ответ с Err и неизменным состоянием.
func (e *Engine) fail(flow Flow, s *Session, r Reply, err error) (Reply, error) {
	if IsValidation(err) {
		metrics.ValidationErrors.WithLabelValues(string(flow)).Inc()
		r.Flow = flow
		r.State = s.State
		r.Session = *s
		r.Err = err
		return r, nil
	}
	return r, err
}
