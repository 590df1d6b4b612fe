package handlers

import (
	"net/http"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Calendar exposes the admin's blocked trial slots
type Calendar struct {
	Svc *services.CalendarService
}

type blockRequest struct {
	models.TimeSlot
	Reason string `json:"reason"`
}

// BlockSlotHandler takes a slot off the booking calendar
func (c Calendar) BlockSlotHandler(w http.ResponseWriter, r *http.Request) {
	var body blockRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	b, err := c.Svc.BlockSlot(ctx, actor(r), body.TimeSlot, body.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// UnblockSlotHandler returns a blocked slot to the calendar
func (c Calendar) UnblockSlotHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "block_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Svc.UnblockSlot(ctx, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// BlockedSlotsHandler lists blocked slots between ?from= and ?to=
func (c Calendar) BlockedSlotsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	q := r.URL.Query()
	list, err := c.Svc.ListBlocked(ctx, q.Get("from"), q.Get("to"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
