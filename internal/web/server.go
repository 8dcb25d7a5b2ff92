// Package web serves the kiosk dashboard: live toasts and the annotated
// preview, pushed over websockets.
package web

import (
	"context"
	"embed"
	"net/http"
	"sync"

	"github.com/andresmejia3/attend/internal/hub"
	"github.com/andresmejia3/attend/internal/notify"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

//go:embed static
var staticFS embed.FS

// Toast event kinds sent on /ws/toasts.
const (
	EventShow   = "show"
	EventFade   = "fade"
	EventRemove = "remove"
)

// ToastEvent is one toast transition.
type ToastEvent struct {
	Event string       `json:"event"`
	Toast notify.Toast `json:"toast"`
}

// PreviewEvent announces the preview state on /ws/preview. The JPEG itself
// follows as a binary frame when Visible is true.
type PreviewEvent struct {
	Visible bool   `json:"visible"`
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

// Server is the dashboard. It is a notify.Sink.
type Server struct {
	app    *fiber.App
	logger *logrus.Logger

	toastHub   *hub.Hub
	previewHub *hub.Hub

	mu      sync.RWMutex
	toasts  []notify.Toast
	preview *notify.Overlay
}

// NewServer builds the dashboard routes.
func NewServer(logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		logger:     logger,
		toastHub:   hub.New("toasts", logger),
		previewHub: hub.New("preview", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "attend dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/toasts", s.handleToasts)
	api.Get("/preview", s.handlePreview)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/toasts", websocket.New(s.handleToastsWS))
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))

	app.Use("/", filesystem.New(filesystem.Config{
		Root:       http.FS(staticFS),
		PathPrefix: "static",
		Index:      "index.html",
	}))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen starts the hubs and serves on addr until ctx is done.
func (s *Server) Listen(ctx context.Context, addr string) error {
	s.StartHubs(ctx)

	errc := make(chan error, 1)
	go func() { errc <- s.app.Listen(addr) }()

	s.logger.WithField("addr", addr).Info("dashboard listening")
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return s.app.Shutdown()
	}
}

// StartHubs runs the broadcast hubs until ctx is done.
func (s *Server) StartHubs(ctx context.Context) {
	go s.toastHub.Run(ctx)
	go s.previewHub.Run(ctx)
}

func (s *Server) ShowToast(t notify.Toast) {
	s.mu.Lock()
	s.toasts = append(s.toasts, t)
	s.mu.Unlock()
	s.toastHub.BroadcastJSON(ToastEvent{Event: EventShow, Toast: t})
}

func (s *Server) FadeToast(t notify.Toast) {
	s.mu.Lock()
	for i := range s.toasts {
		if s.toasts[i].ID == t.ID {
			s.toasts[i].Fading = true
		}
	}
	s.mu.Unlock()
	s.toastHub.BroadcastJSON(ToastEvent{Event: EventFade, Toast: t})
}

func (s *Server) RemoveToast(id string) {
	s.mu.Lock()
	for i := range s.toasts {
		if s.toasts[i].ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.toastHub.BroadcastJSON(ToastEvent{Event: EventRemove, Toast: notify.Toast{ID: id}})
}

func (s *Server) ShowOverlay(o notify.Overlay) error {
	s.mu.Lock()
	s.preview = &o
	s.mu.Unlock()

	if err := s.previewHub.BroadcastJSON(PreviewEvent{Visible: true, Success: o.Success, ID: o.ID}); err != nil {
		return err
	}
	s.previewHub.BroadcastBinary(o.JPEG)
	return nil
}

func (s *Server) RemoveOverlay(id string) {
	s.mu.Lock()
	if s.preview == nil || s.preview.ID != id {
		s.mu.Unlock()
		return
	}
	s.preview = nil
	s.mu.Unlock()
	s.previewHub.BroadcastJSON(PreviewEvent{Visible: false, ID: id})
}
