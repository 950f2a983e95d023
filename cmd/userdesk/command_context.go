package main

import (
	"sync"

	"github.com/spf13/cobra"
)

// structuredLogAnnotation marks commands whose output is structured logs
// rather than plain text meant for a terminal.
const structuredLogAnnotation = "userdesk.structured-log"

type commandExecutionContext struct {
	CommandPath       string
	UsesStructuredLog bool
}

var (
	commandExecutionMu  sync.RWMutex
	commandExecutionCtx commandExecutionContext
)

func setCommandExecutionContext(ctx commandExecutionContext) {
	commandExecutionMu.Lock()
	defer commandExecutionMu.Unlock()
	commandExecutionCtx = ctx
}

func resetCommandExecutionContext() {
	setCommandExecutionContext(commandExecutionContext{})
}

func currentCommandExecutionContext() commandExecutionContext {
	commandExecutionMu.RLock()
	defer commandExecutionMu.RUnlock()
	return commandExecutionCtx
}

func structuredLogging() map[string]string {
	return map[string]string{structuredLogAnnotation: "true"}
}

func commandUsesStructuredLogging(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[structuredLogAnnotation] == "true" {
			return true
		}
	}
	return false
}
