package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"net/mail"
	"strconv"

	"outreach-engine/internal/events"
	"outreach-engine/internal/mailer"
	"outreach-engine/internal/outreach"
	"outreach-engine/internal/store"
)

type OutreachHandler struct {
	DB  *sql.DB
	Hub *events.Hub

	Generate func(ctx context.Context, req outreach.Request) (string, error)
	SendMail func(to, subject, body string) error
}

func (h OutreachHandler) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req outreach.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if req.Title == "" || req.Link == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "title and link are required")
		return
	}

	email, err := h.Generate(r.Context(), req)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "generate_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"email_content": email})
}

type sendReq struct {
	MailID string `json:"mail_id"`
	outreach.Request
}

func (h OutreachHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if _, err := mail.ParseAddress(req.MailID); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "mail_id is not a valid address")
		return
	}
	if req.Title == "" || req.Link == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "title and link are required")
		return
	}

	email, err := h.Generate(r.Context(), req.Request)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "generate_failed", err.Error())
		return
	}

	subject, body := outreach.ExtractSubject(email)
	subject = mailer.SanitizeSubject(subject)

	rec := store.SendRecord{
		Recipient: req.MailID,
		Subject:   subject,
		Body:      body,
		Link:      req.Link,
		Persona:   req.Persona,
		Status:    store.SendStatusSent,
	}

	sendErr := h.SendMail(req.MailID, subject, body)
	if sendErr != nil {
		rec.Status = store.SendStatusFailed
		rec.Error = sendErr.Error()
	}
	if _, err := store.InsertSend(r.Context(), h.DB, rec); err != nil {
		// The delivery outcome still matters more than the log row.
		log.Printf("[outreach] send log insert failed: %v", err)
	}

	if sendErr != nil {
		WriteError(w, r, http.StatusInternalServerError, "send_failed", sendErr.Error())
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeMailSent, 1, map[string]string{
			"recipient": req.MailID,
			"link":      req.Link,
		}))
	}
	writeJSON(w, map[string]any{
		"success":       true,
		"message":       "mail sent to " + req.MailID,
		"email_content": email,
	})
}

type SendLogHandler struct {
	DB *sql.DB
}

func (h SendLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := store.ListSends(r.Context(), h.DB, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	if recs == nil {
		recs = []store.SendRecord{}
	}
	writeJSON(w, recs)
}
