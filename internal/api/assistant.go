package api

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/kmedi-tour/internal/domain/assistant"
)

const maxMessageLen = 2000

func conversationView(c *assistant.Conversation) func(*jx.Encoder) {
	snap := c.Snapshot()
	return object(func(e *jx.Encoder) { encConversation(e, snap) })
}

func (s *Server) getAssistant(w http.ResponseWriter, r *http.Request) error {
	id, err := clientID(r)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, conversationView(s.Assistant.Get(id)))
	return nil
}

// sendAssistantMessage blocks for the reply delay. A visitor who disconnects
// keeps their message but gets no reply.
func (s *Server) sendAssistantMessage(w http.ResponseWriter, r *http.Request) error {
	id, err := clientID(r)
	if err != nil {
		return err
	}
	var text string
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "text" {
			return d.Skip()
		}
		v, err := d.Str()
		text = v
		return err
	}); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return badRequest("text is required")
	case len(text) > maxMessageLen:
		return badRequest("text is too long")
	}

	msg, err := s.Assistant.Assistant().Send(r.Context(), s.Assistant.Get(id), text)
	if err != nil {
		return err
	}
	s.metrics.chatReplies.Add(r.Context(), 1, metric.WithAttributes(attribute.String("kind", "message")))
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encMessage(e, msg) })
	return nil
}

func (s *Server) selectAssistantCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := clientID(r)
	if err != nil {
		return err
	}
	msg, err := s.Assistant.Assistant().SelectCategory(r.Context(), s.Assistant.Get(id), r.PathValue("id"))
	if err != nil {
		return err
	}
	s.metrics.chatReplies.Add(r.Context(), 1, metric.WithAttributes(attribute.String("kind", "category")))
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encMessage(e, msg) })
	return nil
}

func (s *Server) resetAssistant(w http.ResponseWriter, r *http.Request) error {
	id, err := clientID(r)
	if err != nil {
		return err
	}
	c := s.Assistant.Get(id)
	c.Reset(s.now())
	writeJSON(w, http.StatusOK, conversationView(c))
	return nil
}

func (s *Server) estimate(w http.ResponseWriter, r *http.Request) error {
	var req assistant.EstimateRequest
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "treatments":
			req.Treatments, err = strArr(d)
		case "nights":
			req.Nights, err = d.Int()
		case "companions":
			req.Companions, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return err
	}
	est := assistant.EstimatePrice(req)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encEstimate(e, est) })
	return nil
}
