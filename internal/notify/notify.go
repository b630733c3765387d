// Package notify renders the control-plane notification strings the
// dispatcher owes the manager on each level-machine edge, bit-exact
// with buffer.c's "%c:%s:%s" snprintf framing.
package notify

import (
	"fmt"

	"agentbuffer/internal/config"
	"agentbuffer/internal/level"
)

const (
	warnTemplate   = "Agent buffer at %d%% capacity."
	fullTemplate   = "Agent buffer is full."
	floodTemplate  = "Agent buffer flooded, dropping messages."
	normalTemplate = "Agent buffer back to normal, below %d%%."
)

// Messages renders the notification strings owed for edges, in the
// fixed warn, full, flood, normal order, each framed as
// "<MQ>:wazuh-agent:<text>". A state with no edges set renders nothing.
func Messages(cfg config.Config, edges level.Edges) []string {
	var out []string
	if edges.Warn {
		out = append(out, frame(cfg, fmt.Sprintf(warnTemplate, cfg.WarnLevel)))
	}
	if edges.Full {
		out = append(out, frame(cfg, fullTemplate))
	}
	if edges.Flood {
		out = append(out, frame(cfg, floodTemplate))
	}
	if edges.Normal {
		out = append(out, frame(cfg, fmt.Sprintf(normalTemplate, cfg.NormalLevel)))
	}
	return out
}

func frame(cfg config.Config, text string) string {
	return fmt.Sprintf("%c:wazuh-agent:%s", cfg.LocalMQIdentifier, text)
}
