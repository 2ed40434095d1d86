// Package sse pushes lead and client changes to signed-in staff over
// Server-Sent Events so open dashboards refresh without polling.
package sse

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"papex_backend/platform/httpkit"
	"papex_backend/platform/logger"
	"papex_backend/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType names the SSE event sent to the browser.
type EventType string

const (
	EventLeadCreated   EventType = "lead_created"
	EventLeadUpdated   EventType = "lead_updated"
	EventLeadDeleted   EventType = "lead_deleted"
	EventClientUpdated EventType = "client_updated"
)

const (
	defaultHeartbeat = 25 * time.Second
	clientBuffer     = 32
	msgBadFilter     = "Paramètre de filtre invalide."
)

// Event only carries identifiers; the dashboard reloads the resource through
// the regular endpoints, which apply role checks.
type Event struct {
	Type     EventType `json:"type"`
	LeadID   int64     `json:"leadId,omitempty"`
	ClientID int64     `json:"clientId,omitempty"`
	Status   string    `json:"status,omitempty"`
	Change   string    `json:"change,omitempty"`
}

// Filter narrows a stream to one lead or one client file. Zero fields match everything.
type Filter struct {
	LeadID   int64
	ClientID int64
}

func (f Filter) matches(e Event) bool {
	if f.LeadID != 0 && e.LeadID != f.LeadID {
		return false
	}
	if f.ClientID != 0 && e.ClientID != f.ClientID {
		return false
	}
	return true
}

type client struct {
	userID uuid.UUID
	filter Filter
	events chan Event
}

// Service keeps the connected streams and fans events out to them.
type Service struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	heartbeat time.Duration
	done      chan struct{}
	closeOnce sync.Once
	log       *logger.Logger
}

func New(log *logger.Logger) *Service {
	return &Service{
		clients:   make(map[*client]struct{}),
		heartbeat: defaultHeartbeat,
		done:      make(chan struct{}),
		log:       log,
	}
}

// WithHeartbeat sets how often idle streams receive a ping.
func (s *Service) WithHeartbeat(d time.Duration) *Service {
	s.heartbeat = d
	return s
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	metrics.StreamOpened()
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	metrics.StreamClosed()
}

// Connected returns the number of open streams.
func (s *Service) Connected() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Publish hands the event to every matching stream. Slow streams drop it.
func (s *Service) Publish(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for c := range s.clients {
		if !c.filter.matches(event) {
			continue
		}
		select {
		case c.events <- event:
		default:
			s.log.Warn("event stream buffer full", "user_id", c.userID, "type", event.Type)
		}
	}
}

// Handler streams events to the authenticated caller until the request ends
// or the service is closed. ?lead= and ?client= narrow the stream.
func (s *Service) Handler(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgBadFilter, nil)
		return
	}

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	cl := &client{userID: id.UserID(), filter: filter, events: make(chan Event, clientBuffer)}
	s.addClient(cl)
	defer s.removeClient(cl)

	c.SSEvent("connected", gin.H{"userId": id.UserID()})
	c.Writer.Flush()
	s.log.Debug("event stream opened", "user_id", id.UserID(), "lead_id", filter.LeadID, "client_id", filter.ClientID)

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	gone := c.Request.Context().Done()
	for {
		select {
		case <-gone:
			return
		case <-s.done:
			return
		case now := <-ticker.C:
			c.SSEvent("ping", gin.H{"time": now.Unix()})
			c.Writer.Flush()
		case event := <-cl.events:
			c.SSEvent(string(event.Type), event)
			c.Writer.Flush()
		}
	}
}

// Close ends every open stream.
func (s *Service) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func parseFilter(c *gin.Context) (Filter, error) {
	var f Filter
	var err error
	if raw := c.Query("lead"); raw != "" {
		if f.LeadID, err = strconv.ParseInt(raw, 10, 64); err != nil || f.LeadID <= 0 {
			return Filter{}, strconv.ErrSyntax
		}
	}
	if raw := c.Query("client"); raw != "" {
		if f.ClientID, err = strconv.ParseInt(raw, 10, 64); err != nil || f.ClientID <= 0 {
			return Filter{}, strconv.ErrSyntax
		}
	}
	return f, nil
}
