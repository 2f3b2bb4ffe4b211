package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/mealsplit/internal/export"
	"github.com/mmynk/mealsplit/internal/metrics"
	"github.com/mmynk/mealsplit/internal/models"
	"github.com/mmynk/mealsplit/internal/notify"
	"github.com/mmynk/mealsplit/internal/session"
	"github.com/mmynk/mealsplit/pkg/api"
)

// SplitService implements the Connect SplitService. It keeps no state: every
// request carries the bill and every mutation answers with the new one.
type SplitService struct {
	exporter *export.Exporter
	metrics  *metrics.Metrics
	opts     []session.Option
}

var _ api.SplitServiceHandler = (*SplitService)(nil)

// NewSplitService creates a SplitService. Session options apply to every
// restored bill.
func NewSplitService(exporter *export.Exporter, m *metrics.Metrics, opts ...session.Option) *SplitService {
	return &SplitService{exporter: exporter, metrics: m, opts: opts}
}

// restore rebuilds a session from the request bill.
func (s *SplitService) restore(b api.Bill) (*session.State, error) {
	st, err := session.Restore(billToModel(b), s.opts...)
	if err != nil {
		slog.Warn("Rejected bill snapshot", "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return st, nil
}

// Calculate splits the bill.
func (s *SplitService) Calculate(ctx context.Context, req *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error) {
	st, err := s.restore(req.Msg.Bill)
	if err != nil {
		return nil, err
	}
	alloc, err := st.Allocation()
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	slog.Debug("Calculated split",
		"participants", len(alloc.Owed),
		"total", alloc.Total,
	)
	resp := allocationToAPI(alloc)
	return connect.NewResponse(&resp), nil
}

// AddParticipant adds a name to the roster and returns the updated bill and split.
func (s *SplitService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.MutationResponse], error) {
	return s.mutate(ctx, req.Msg.Bill, func(st *session.State) (models.Bill, error) {
		return st.AddParticipant(req.Msg.Name)
	})
}

// RemoveParticipant removes a name and its shares of every item.
func (s *SplitService) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.MutationResponse], error) {
	return s.mutate(ctx, req.Msg.Bill, func(st *session.State) (models.Bill, error) {
		return st.RemoveParticipant(req.Msg.Name)
	})
}

// AddItem adds an item, split into copies when a quantity is given.
func (s *SplitService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.MutationResponse], error) {
	return s.mutate(ctx, req.Msg.Bill, func(st *session.State) (models.Bill, error) {
		return st.AddItem(session.NewItem{
			Name:     req.Msg.Name,
			Price:    req.Msg.Price,
			Quantity: req.Msg.Quantity,
		})
	})
}

// EditItem updates an item's name and price.
func (s *SplitService) EditItem(ctx context.Context, req *connect.Request[api.EditItemRequest]) (*connect.Response[api.MutationResponse], error) {
	return s.mutate(ctx, req.Msg.Bill, func(st *session.State) (models.Bill, error) {
		return st.EditItem(req.Msg.ItemID, session.ItemEdit{
			Name:  req.Msg.Name,
			Price: req.Msg.Price,
		})
	})
}

// RemoveItem deletes an item.
func (s *SplitService) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.MutationResponse], error) {
	return s.mutate(ctx, req.Msg.Bill, func(st *session.State) (models.Bill, error) {
		return st.RemoveItem(req.Msg.ItemID)
	})
}

// ToggleConsumer adds or removes a participant from an item's consumers.
func (s *SplitService) ToggleConsumer(ctx context.Context, req *connect.Request[api.ToggleConsumerRequest]) (*connect.Response[api.MutationResponse], error) {
	return s.mutate(ctx, req.Msg.Bill, func(st *session.State) (models.Bill, error) {
		return st.ToggleConsumer(req.Msg.ItemID, req.Msg.Participant, req.Msg.Checked)
	})
}

// mutate applies op to the restored bill. Rejected mutations are not RPC
// errors: the unchanged bill comes back with a notification.
func (s *SplitService) mutate(ctx context.Context, b api.Bill, op func(*session.State) (models.Bill, error)) (*connect.Response[api.MutationResponse], error) {
	st, err := s.restore(b)
	if err != nil {
		return nil, err
	}

	next, opErr := op(st)
	var verr *session.ValidationError
	if opErr != nil && !errors.As(opErr, &verr) {
		slog.Error("Mutation failed", "error", opErr)
		return nil, connect.NewError(connect.CodeInternal, opErr)
	}

	alloc, err := st.Allocation()
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewResponse(&api.MutationResponse{
		Bill:         billFromModel(next),
		Allocation:   allocationToAPI(alloc),
		Notification: notificationToAPI(notify.Emit(ctx, notify.FromError(opErr, "Error", "Something went wrong."))),
	}), nil
}

// ExportImage renders the results card as a PNG.
func (s *SplitService) ExportImage(ctx context.Context, req *connect.Request[api.ExportRequest]) (*connect.Response[api.ExportResponse], error) {
	st, err := s.restore(req.Msg.Bill)
	if err != nil {
		return nil, err
	}
	alloc, err := st.Allocation()
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	art, err := s.exporter.Export(ctx, alloc)
	switch {
	case err == nil:
		s.metrics.Export("ok")
		slog.Info("Exported image", "bytes", len(art.Data), "url", art.URL)
		return connect.NewResponse(&api.ExportResponse{
			Filename:    art.Filename,
			ContentType: art.ContentType,
			Data:        art.Data,
			URL:         art.URL,
		}), nil
	case errors.Is(err, export.ErrUpload):
		s.metrics.Export("upload_error")
		slog.Warn("Image upload failed", "error", err)
		return connect.NewResponse(&api.ExportResponse{
			Filename:    art.Filename,
			ContentType: art.ContentType,
			Data:        art.Data,
			Notification: notificationToAPI(notify.Emit(ctx, &notify.Notification{
				Title:       "Upload failed",
				Description: "The image was saved but could not be shared.",
				Severity:    notify.SeverityDestructive,
			})),
		}), nil
	default:
		s.metrics.Export("error")
		slog.Error("Image export failed", "error", err)
		return connect.NewResponse(&api.ExportResponse{
			Notification: notificationToAPI(notify.Emit(ctx, &notify.Notification{
				Title:       "Error",
				Description: "Failed to generate image. Please try again.",
				Severity:    notify.SeverityDestructive,
			})),
		}), nil
	}
}
