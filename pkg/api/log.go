package api

import "log/slog"

// LogSummary methods describe a message in a log line without its contents.
// Names and prices stay out of the logs.

func (b Bill) LogSummary() []slog.Attr {
	assigned := 0
	for _, item := range b.Items {
		if len(item.Consumers) > 0 {
			assigned++
		}
	}
	return []slog.Attr{
		slog.Int("participants", len(b.Participants)),
		slog.Int("items", len(b.Items)),
		slog.Int("assigned_items", assigned),
	}
}

func (r *CalculateRequest) LogSummary() []slog.Attr { return r.Bill.LogSummary() }
func (r *AddParticipantRequest) LogSummary() []slog.Attr { return r.Bill.LogSummary() }
func (r *RemoveParticipantRequest) LogSummary() []slog.Attr { return r.Bill.LogSummary() }
func (r *EditItemRequest) LogSummary() []slog.Attr { return r.Bill.LogSummary() }
func (r *RemoveItemRequest) LogSummary() []slog.Attr { return r.Bill.LogSummary() }
func (r *ToggleConsumerRequest) LogSummary() []slog.Attr { return r.Bill.LogSummary() }
func (r *ExportRequest) LogSummary() []slog.Attr { return r.Bill.LogSummary() }

func (r *AddItemRequest) LogSummary() []slog.Attr {
	return append(r.Bill.LogSummary(), slog.String("quantity", r.Quantity))
}

func (r *SuggestRequest) LogSummary() []slog.Attr {
	return []slog.Attr{
		slog.Int("partial_len", len(r.Partial)),
		slog.Bool("tracked", r.ClientID != "" && r.FieldID != ""),
	}
}

func (r *MutationResponse) LogSummary() []slog.Attr {
	attrs := []slog.Attr{slog.Int("result_items", len(r.Bill.Items))}
	if r.Notification != nil {
		attrs = append(attrs, slog.String("notification", r.Notification.Title))
	}
	return attrs
}

func (r *ExportResponse) LogSummary() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("bytes", len(r.Data)),
		slog.Bool("uploaded", r.URL != ""),
	}
	if r.Notification != nil {
		attrs = append(attrs, slog.String("notification", r.Notification.Title))
	}
	return attrs
}

func (r *GuessResponse) LogSummary() []slog.Attr {
	return []slog.Attr{slog.Bool("available", r.Available), slog.Bool("stale", r.Stale)}
}

func (r *SuggestResponse) LogSummary() []slog.Attr {
	return []slog.Attr{
		slog.Int("suggestions", len(r.Suggestions)),
		slog.Bool("available", r.Available),
		slog.Bool("stale", r.Stale),
	}
}
