package handlers

import (
	"net/http"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Meeting exposes the virtual courtroom of a case
type Meeting struct {
	Svc *services.MeetingService
	Hub *NotificationHub
}

type joinRequest struct {
	DisplayName string `json:"displayName"`
}

type resolveRequest struct {
	Resolution string `json:"resolution"`
}

// WarRoomWebSocketHandler joins an authorized participant to the case's live event stream
func (m Meeting) WarRoomWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	a := actor(r)
	_, err := m.Svc.AttendCase(ctx, caseID, a)
	cancel()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	m.Hub.serve(w, r, a.ID.Hex(), caseID.Hex())
}

// ActiveMeetingHandler returns the case's running meeting
func (m Meeting) ActiveMeetingHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := m.Svc.AttendCase(ctx, caseID, actor(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	meeting, err := m.Svc.GetActiveMeeting(ctx, caseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// CreateMeetingHandler opens the courtroom
func (m Meeting) CreateMeetingHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	meeting, err := m.Svc.CreateMeeting(ctx, caseID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, meeting)
}

// JoinMeetingHandler records the caller entering the courtroom
func (m Meeting) JoinMeetingHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var body joinRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	p, err := m.Svc.JoinMeeting(ctx, caseID, actor(r), body.DisplayName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// LeaveMeetingHandler records the caller leaving the courtroom
func (m Meeting) LeaveMeetingHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := m.Svc.LeaveMeeting(ctx, caseID, actor(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ParticipantsHandler lists who is in the courtroom
func (m Meeting) ParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ps, err := m.Svc.ActiveParticipants(ctx, caseID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// EndMeetingHandler closes the courtroom
func (m Meeting) EndMeetingHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	meeting, err := m.Svc.EndMeeting(ctx, caseID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// ReportIncidentHandler records a problem during the trial
func (m Meeting) ReportIncidentHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var in services.IncidentInput
	if !decode(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	inc, err := m.Svc.ReportIncident(ctx, caseID, actor(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inc)
}

// IncidentsHandler lists the incidents of a case, optionally by ?status=
func (m Meeting) IncidentsHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := m.Svc.ListIncidents(ctx, caseID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ResolveIncidentHandler closes an incident
func (m Meeting) ResolveIncidentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "incident_id")
	if !ok {
		return
	}
	var body resolveRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	inc, err := m.Svc.ResolveIncident(ctx, id, actor(r), body.Resolution)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

// AddRecordingHandler registers a recording of the trial
func (m Meeting) AddRecordingHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var in services.RecordingInput
	if !decode(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rec, err := m.Svc.AddRecording(ctx, caseID, actor(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// RecordingsHandler lists the recordings of a case
func (m Meeting) RecordingsHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := m.Svc.ListRecordings(ctx, caseID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteRecordingHandler removes a recording and its stored asset
func (m Meeting) DeleteRecordingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "recording_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := m.Svc.DeleteRecording(ctx, id, actor(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
