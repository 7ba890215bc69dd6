package graph

import (
	"context"
	"fmt"

	"github.com/smallnest/langgraphlab/log"
)

// NodeEvent represents different types of node events
type NodeEvent string

const (
	// NodeEventStart indicates a node has started execution
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node has completed and its update was merged
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node encountered an error
	NodeEventError NodeEvent = "error"

	// NodeEventRoute indicates the executor chose the next node
	NodeEventRoute NodeEvent = "route"

	// EventChainStart indicates the graph execution has started
	EventChainStart NodeEvent = "chain_start"

	// EventChainEnd indicates the graph execution has completed
	EventChainEnd NodeEvent = "chain_end"
)

// NodeListener defines the interface for node event listeners. state holds
// the graph state value after the event; for route events it is the name of
// the destination node.
type NodeListener interface {
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state any, err error)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc func(ctx context.Context, event NodeEvent, nodeName string, state any, err error)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state any, err error) {
	f(ctx, event, nodeName, state, err)
}

// LoggingListener writes node events to a Logger.
type LoggingListener struct {
	logger       log.Logger
	includeState bool
}

// NewLoggingListener creates a listener logging at debug level, errors at
// error level. With includeState the state is appended to each line.
func NewLoggingListener(logger log.Logger, includeState bool) *LoggingListener {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &LoggingListener{logger: logger, includeState: includeState}
}

func (l *LoggingListener) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state any, err error) {
	msg := fmt.Sprintf("[%s] %s", event, nodeName)
	if event == NodeEventRoute {
		msg = fmt.Sprintf("[%s] %s -> %v", event, nodeName, state)
	} else if l.includeState && state != nil {
		msg = fmt.Sprintf("%s state=%+v", msg, state)
	}

	if err != nil {
		l.logger.Error("%s: %v", msg, err)
		return
	}
	l.logger.Debug("%s", msg)
}
