package web

import (
	"github.com/andresmejia3/attend/internal/hub"
	"github.com/andresmejia3/attend/internal/notify"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (s *Server) snapshot() ([]notify.Toast, *notify.Overlay) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	toasts := append([]notify.Toast{}, s.toasts...)
	if s.preview == nil {
		return toasts, nil
	}
	p := *s.preview
	return toasts, &p
}

// handleToasts returns the toasts currently on screen, oldest first.
func (s *Server) handleToasts(c *fiber.Ctx) error {
	toasts, _ := s.snapshot()
	return c.JSON(toasts)
}

// handlePreview returns the current annotated preview, or 204 when none is shown.
func (s *Server) handlePreview(c *fiber.Ctx) error {
	_, p := s.snapshot()
	if p == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set("X-Preview-Success", boolString(p.Success))
	return c.Send(p.JPEG)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (s *Server) handleToastsWS(conn *websocket.Conn) {
	toasts, _ := s.snapshot()
	var initial []hub.Message
	for _, t := range toasts {
		data, err := json.Marshal(ToastEvent{Event: EventShow, Toast: t})
		if err != nil {
			continue
		}
		initial = append(initial, hub.NewJSONMessage(data))
	}
	hub.NewClient(s.toastHub, conn, initial...).Run()
}

func (s *Server) handlePreviewWS(conn *websocket.Conn) {
	_, p := s.snapshot()
	var initial []hub.Message
	if p != nil {
		data, err := json.Marshal(PreviewEvent{Visible: true, Success: p.Success, ID: p.ID})
		if err == nil {
			initial = append(initial, hub.NewJSONMessage(data), hub.NewBinaryMessage(p.JPEG))
		}
	}
	hub.NewClient(s.previewHub, conn, initial...).Run()
}
