package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mmynk/mealsplit/internal/export"
	"github.com/mmynk/mealsplit/internal/session"
	"github.com/mmynk/mealsplit/pkg/api"
)

// DownloadHandler serves POST requests carrying a JSON bill with the rendered
// PNG as an attachment.
func (s *SplitService) DownloadHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var bill api.Bill
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, api.DefaultReadMaxBytes)).Decode(&bill); err != nil {
			http.Error(w, "invalid bill", http.StatusBadRequest)
			return
		}
		st, err := session.Restore(billToModel(bill), s.opts...)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, session.ErrMalformedSnapshot) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		alloc, err := st.Allocation()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		data, err := s.exporter.Render(alloc)
		if err != nil {
			s.metrics.Export("error")
			status := http.StatusInternalServerError
			if errors.Is(err, export.ErrTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			slog.Error("Image render failed", "error", err)
			http.Error(w, "Failed to generate image. Please try again.", status)
			return
		}
		s.metrics.Export("ok")

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			slog.Warn("Writing image failed", "error", err)
		}
	})
}
