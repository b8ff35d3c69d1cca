package dialog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
)

func TestEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("no active dialog", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.engine.Handle(ctx, alice.UserID, Text("hi"))
		assert.ErrorIs(t, err, ErrNoDialog)

		cancelled, err := h.engine.Cancel(ctx, alice.UserID)
		require.NoError(t, err)
		assert.False(t, cancelled)
	})

	t.Run("unknown flow", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.engine.Start(ctx, alice, Flow("survey"), nil)
		assert.ErrorIs(t, err, ErrUnknownFlow)
	})

	t.Run("cancel helper", func(t *testing.T) {
		h := newHarness(t)
		startAuthoring(t, h)
		cancelled, err := h.engine.Cancel(ctx, owner.UserID)
		require.NoError(t, err)
		assert.True(t, cancelled)
		assert.Zero(t, h.store.Len())
	})

	t.Run("validation keeps the stored session untouched", func(t *testing.T) {
		h := newHarness(t)
		toPrice(t, h)
		before, err := h.engine.Active(ctx, owner.UserID)
		require.NoError(t, err)

		r, err := h.engine.Handle(ctx, owner.UserID, Text("nope"))
		require.NoError(t, err)
		require.Error(t, r.Err)

		after, err := h.engine.Active(ctx, owner.UserID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("parallel users", func(t *testing.T) {
		h := newHarness(t)
		tool := h.tools.add("Drill", "20", true)

		var wg sync.WaitGroup
		for i := int64(1); i <= 20; i++ {
			wg.Add(1)
			go func(uid int64) {
				defer wg.Done()
				req := Requester{UserID: 1000 + uid, ChatID: 1000 + uid}
				if _, err := h.engine.Start(ctx, req, FlowBooking, nil, ToolChoice(tool.ID)); err != nil {
					t.Error(err)
					return
				}
				for _, in := range []Input{Date(day(2024, 6, 1)), Date(day(2024, 6, 3)), Choice(false), Skip(), Confirm()} {
					if _, err := h.engine.Handle(ctx, req.UserID, in); err != nil {
						t.Error(err)
						return
					}
				}
			}(i)
		}
		wg.Wait()

		assert.Len(t, h.bookings.items, 20)
		assert.Zero(t, h.store.Len())
	})
}

func TestEngine_RejectedStartKeepsActiveDialog(t *testing.T) {
	ctx := context.Background()

	toEndDate := func(t *testing.T, h *harness) *Session {
		t.Helper()
		tool := h.tools.add("Drill", "20", true)
		_, err := h.engine.Start(ctx, alice, FlowBooking, nil, ToolChoice(tool.ID))
		require.NoError(t, err)
		step(t, h, alice.UserID, Date(day(2024, 6, 1)))
		s, err := h.engine.Active(ctx, alice.UserID)
		require.NoError(t, err)
		require.NotNil(t, s)
		require.Equal(t, StateBookingEnd, s.State)
		return s
	}

	t.Run("status change not allowed", func(t *testing.T) {
		h := newHarness(t)
		before := toEndDate(t, h)
		done := seedBooking(h, alice.UserID, 1, bookings.StatusCompleted)

		r, err := h.engine.Start(ctx, alice, FlowReview, &Target{BookingID: done.ID, Status: bookings.StatusCancelled})
		require.NoError(t, err)
		assert.ErrorIs(t, r.Err, ErrBadTransition)

		after, err := h.engine.Active(ctx, alice.UserID)
		require.NoError(t, err)
		assert.Equal(t, before, after)

		r = step(t, h, alice.UserID, Date(day(2024, 6, 3)))
		assert.Equal(t, StateBookingDelivery, r.State)
	})

	t.Run("missing target", func(t *testing.T) {
		h := newHarness(t)
		before := toEndDate(t, h)

		_, err := h.engine.Start(ctx, alice, FlowMessage, &Target{BookingID: 999})
		assert.ErrorIs(t, err, ErrNotFound)

		after, err := h.engine.Active(ctx, alice.UserID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("accepted start replaces the old dialog", func(t *testing.T) {
		h := newHarness(t)
		toEndDate(t, h)
		pending := seedBooking(h, alice.UserID, 1, bookings.StatusPending)

		r, err := h.engine.Start(ctx, alice, FlowReview, &Target{BookingID: pending.ID, Status: bookings.StatusCancelled})
		require.NoError(t, err)
		require.NoError(t, r.Err)

		s, err := h.engine.Active(ctx, alice.UserID)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, FlowReview, s.Flow)
		assert.Nil(t, s.Booking)
	})
}

func TestEngine_UnregisteredFlowIsDropped(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.store.Save(ctx, &Session{Requester: alice, Flow: Flow("survey"), State: State("survey:q1")}))

	_, err := h.engine.Handle(ctx, alice.UserID, Text("yes"))
	assert.ErrorIs(t, err, ErrUnknownFlow)
	assert.Zero(t, h.store.Len())
}
