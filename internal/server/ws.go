package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
)

// socketUI streams orchestrator calls to one websocket connection.
type socketUI struct {
	session string
	conn    *websocket.Conn

	writeMu sync.Mutex
	inputMu sync.Mutex
	input   string
}

func (u *socketUI) send(ev PanelEvent) error {
	ev.Session = u.session
	u.writeMu.Lock()
	defer u.writeMu.Unlock()
	return u.conn.WriteJSON(ev)
}

func (u *socketUI) setInput(v string) {
	u.inputMu.Lock()
	defer u.inputMu.Unlock()
	u.input = v
}

func (u *socketUI) Value() string {
	u.inputMu.Lock()
	defer u.inputMu.Unlock()
	return u.input
}

func (u *socketUI) Show()                 { _ = u.send(PanelEvent{Type: "show"}) }
func (u *socketUI) SetClass(class string) { _ = u.send(PanelEvent{Type: "class", Class: class}) }
func (u *socketUI) SetContent(html template.HTML) {
	_ = u.send(PanelEvent{Type: "content", HTML: string(html)})
}
func (u *socketUI) Disable(caption string) {
	_ = u.send(PanelEvent{Type: "trigger", Disabled: true, Caption: caption})
}
func (u *socketUI) Enable(caption string) { _ = u.send(PanelEvent{Type: "trigger", Caption: caption}) }
func (u *socketUI) Alert(msg string)      { _ = u.send(PanelEvent{Type: "alert", Message: msg}) }

// handleScanWS godoc
// @Summary Live scan panel
// @Description Send {"url": "..."} to scan or {"action": "cancel"} to stop. The server streams PanelEvent messages.
// @Success 101 {object} PanelEvent
// @Router /ws/scan [get]
func (s *Server) handleScanWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ui := &socketUI{session: uuid.NewString(), conn: conn}
	log := s.logger.With(logging.Field{Key: "session", Value: ui.session})

	o, err := scan.NewOrchestrator(s.cfg.Scan, s.deps.Client, scan.UI{Input: ui, Panel: ui, Trigger: ui, Notifier: ui}, log)
	if err != nil {
		_ = ui.send(PanelEvent{Type: "error", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	// slot is held from reading a link until its Run returns, so a second
	// message can never replace the input of a pending scan.
	slot := make(chan struct{}, 1)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	log.Info("scan session opened")
	for {
		var msg SocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("scan session read failed", logging.Field{Key: "error", Value: err.Error()})
			}
			return
		}

		switch strings.ToLower(strings.TrimSpace(msg.Action)) {
		case "cancel":
			o.Cancel()
			continue
		case "", "scan":
		default:
			_ = ui.send(PanelEvent{Type: "error", Message: "unknown action"})
			continue
		}

		select {
		case slot <- struct{}{}:
		default:
			log.Warn("scan rejected: another scan is in flight", logging.Field{Key: "url", Value: msg.URL})
			_ = ui.send(PanelEvent{Type: "error", Message: scan.ErrScanInFlight.Error()})
			continue
		}
		ui.setInput(msg.URL)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-slot }()
			resp, err := o.Run(ctx)
			switch {
			case errors.Is(err, scan.ErrScanInFlight):
				_ = ui.send(PanelEvent{Type: "error", Message: err.Error()})
			case err != nil:
				_ = ui.send(PanelEvent{Type: "done", Message: err.Error()})
			default:
				_ = ui.send(PanelEvent{Type: "done", Verdict: resp.Verdict})
			}
		}()
	}
}
