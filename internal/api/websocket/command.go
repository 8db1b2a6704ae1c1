package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
)

var (
	errMalformedCommand = errors.New("malformed command")
	errSavedDisabled    = errors.New("saved views are disabled")
)

// Command types a client may send.
const (
	CmdRender    = "render"
	CmdPage      = "page"
	CmdPeriod    = "period"
	CmdFaction   = "faction"
	CmdCommander = "commander"
	CmdSearch    = "search"
	CmdSort      = "sort"
	CmdSaved     = "saved"
	CmdReplace   = "replace"
)

// Command is a selector change sent by a client.
//
//	{"type": "faction", "value": "skaal"}
//	{"type": "search", "value": "wolf"}
//	{"type": "replace", "request": {"page": "cards", ...}}
type Command struct {
	Type    string        `json:"type"`
	Value   string        `json:"value,omitempty"`
	Request *view.Request `json:"request,omitempty"`
}

// apply routes a command to the client's session. Results arrive through
// the session's render callback; search renders after its debounce.
func (c *Client) apply(ctx context.Context, cmd Command) {
	s := c.session
	switch cmd.Type {
	case CmdRender:
		c.pushView(s.Render())
	case CmdPage:
		page, err := view.ParsePage(cmd.Value)
		if err != nil {
			c.pushView(nil, err)
			return
		}
		_, _ = s.SetPage(page)
	case CmdPeriod:
		_, _ = s.SetPeriod(cmd.Value)
	case CmdFaction:
		_, _ = s.SetFaction(cmd.Value)
	case CmdCommander:
		_, _ = s.SetCommander(cmd.Value)
	case CmdSearch:
		s.Search(cmd.Value)
	case CmdSort:
		_, _ = s.SelectSort(cmd.Value)
	case CmdReplace:
		if cmd.Request == nil {
			c.pushView(nil, errMalformedCommand)
			return
		}
		if _, err := view.ParsePage(string(cmd.Request.Page)); err != nil {
			c.pushView(nil, err)
			return
		}
		_, _ = s.Replace(*cmd.Request)
	case CmdSaved:
		if c.hub.cfg.Saved == nil {
			c.pushView(nil, errSavedDisabled)
			return
		}
		sv, err := c.hub.cfg.Saved.Use(ctx, cmd.Value)
		if err != nil {
			c.pushView(nil, err)
			return
		}
		_, _ = s.Replace(sv.Request)
	default:
		c.pushView(nil, fmt.Errorf("%w: unknown type %q", errMalformedCommand, cmd.Type))
	}
}
