package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/tracker"
	"github.com/2beens/fittrack/pkg"
)

const (
	ToolListWorkouts        = "list_workouts"
	ToolListDietEntries     = "list_diet_entries"
	ToolListProgressEntries = "list_progress_entries"
	ToolTrackerSummary      = "tracker_summary"
	ToolCheckDuplicates     = "check_duplicates"
)

const maxCallBodyBytes = 64 * 1024

//go:generate mockgen -source=$GOFILE -destination=mcp_mocks_test.go -package=mcp_test

type trackerData interface {
	Workouts() []tracker.Workout
	DietEntries() []tracker.DietEntry
	ProgressEntries() []tracker.ProgressEntry
	Summary() tracker.Summary
	State() tracker.State
}

// DateRangeInput is the optional input of the list tools.
type DateRangeInput struct {
	From string `json:"from,omitempty" description:"Start date (YYYY-MM-DD)"`
	To   string `json:"to,omitempty" description:"End date (YYYY-MM-DD)"`
}

// Handler answers MCP tool calls over the tracker data.
type Handler struct {
	data trackerData
}

func NewHandler(data trackerData) *Handler {
	return &Handler{
		data: data,
	}
}

// HandleCall serves POST /mcp: one protocol.CallToolRequest in, one
// protocol.CallToolResult out.
func (h *Handler) HandleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var req protocol.CallToolRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCallBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid tool call", http.StatusBadRequest)
		return
	}

	result, err := h.Call(&req)
	if err != nil {
		log.Debugf("mcp tool call [%s]: %s", req.Name, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	pkg.WriteJSON(w, result, http.StatusOK)
}

// Call routes the request to the named tool. Only an unknown tool is an
// error; tool failures come back as results with IsError set.
func (h *Handler) Call(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	switch req.Name {
	case ToolListWorkouts:
		return h.listTool(req, func(dr tracker.DateRange) any {
			return tracker.FilterByDate(h.data.Workouts(), dr)
		}), nil
	case ToolListDietEntries:
		return h.listTool(req, func(dr tracker.DateRange) any {
			return tracker.FilterByDate(h.data.DietEntries(), dr)
		}), nil
	case ToolListProgressEntries:
		return h.listTool(req, func(dr tracker.DateRange) any {
			return tracker.FilterByDate(h.data.ProgressEntries(), dr)
		}), nil
	case ToolTrackerSummary:
		return jsonResult(h.data.Summary()), nil
	case ToolCheckDuplicates:
		return jsonResult(tracker.CheckDuplicates(h.data.State())), nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", req.Name)
	}
}

func (h *Handler) listTool(req *protocol.CallToolRequest, list func(tracker.DateRange) any) *protocol.CallToolResult {
	var in DateRangeInput
	if err := extractParams(req, &in); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}
	dr, err := tracker.ParseDateRange(in.From, in.To)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(list(dr))
}

func extractParams(req *protocol.CallToolRequest, target any) error {
	if len(req.Arguments) == 0 {
		return nil
	}
	raw, err := json.Marshal(req.Arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

func jsonResult(v any) *protocol.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{Type: "text", Text: string(raw)},
		},
	}
}

func errorResult(text string) *protocol.CallToolResult {
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{Type: "text", Text: text},
		},
		IsError: true,
	}
}
