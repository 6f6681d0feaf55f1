package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/ledmcp/internal/api/models"
	"github.com/smazurov/ledmcp/internal/events"
	"github.com/smazurov/ledmcp/internal/led"
)

// Demo LED outcomes published on the event bus.
const (
	demoOutcomeOK       = "ok"
	demoOutcomeRejected = "rejected"
)

// brightnessRangeMessage is the client-facing 400 detail for out-of-range brightness.
var brightnessRangeMessage = fmt.Sprintf("Brightness must be between %d and %d", led.MinBrightness, led.MaxBrightness)

// registerDemoLEDRoutes registers the HTTP demo LED endpoints.
// They do not touch the LED owned by the MCP process; real control goes over stdio.
func (s *Server) registerDemoLEDRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "demo-led-status",
		Method:      http.MethodGet,
		Path:        "/api/led/status",
		Summary:     "Demo LED status",
		Description: "Returns a fixed placeholder LED state. " + models.DemoNote,
		Tags:        []string{"demo"},
	}, func(_ context.Context, _ *struct{}) (*models.DemoLEDStatusResponse, error) {
		s.publishDemoRequest("status", demoOutcomeOK)
		initial := led.DefaultState()
		return &models.DemoLEDStatusResponse{
			Body: models.DemoLEDStatusData{
				IsOn:       initial.On,
				Brightness: initial.Brightness,
				Color:      string(initial.Color),
				Message:    "Use MCP protocol to control LED. " + models.DemoNote,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "demo-led-on",
		Method:      http.MethodPost,
		Path:        "/api/led/on",
		Summary:     "Demo LED on",
		Description: "Validates brightness and echoes it back. " + models.DemoNote,
		Tags:        []string{"demo"},
		Errors:      []int{400},
	}, func(_ context.Context, input *models.DemoLEDOnRequest) (*models.DemoLEDActionResponse, error) {
		if err := led.ValidateBrightness(input.Brightness); err != nil {
			s.publishDemoRequest("on", demoOutcomeRejected)
			return nil, huma.Error400BadRequest(brightnessRangeMessage)
		}
		s.publishDemoRequest("on", demoOutcomeOK)
		return &models.DemoLEDActionResponse{
			Body: models.DemoLEDActionData{
				Status:  "ok",
				Message: fmt.Sprintf("LED turned on at %d%%", input.Brightness),
				Note:    models.DemoNote,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "demo-led-off",
		Method:      http.MethodPost,
		Path:        "/api/led/off",
		Summary:     "Demo LED off",
		Description: models.DemoNote,
		Tags:        []string{"demo"},
	}, func(_ context.Context, _ *struct{}) (*models.DemoLEDActionResponse, error) {
		s.publishDemoRequest("off", demoOutcomeOK)
		return &models.DemoLEDActionResponse{
			Body: models.DemoLEDActionData{
				Status:  "ok",
				Message: "LED off",
				Note:    models.DemoNote,
			},
		}, nil
	})
}

func (s *Server) publishDemoRequest(action, outcome string) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(events.DemoLEDRequestEvent{
		Action:    action,
		Outcome:   outcome,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
