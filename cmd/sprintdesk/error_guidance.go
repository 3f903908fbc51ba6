package main

import (
	"context"
	"errors"
	"net"

	"sprintdesk/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if !apiErr.FromServer() {
			lines = append(lines, "hint: verify SPRINTDESK_API_URL points to a sprintdesk server.")
		}
		switch apiErr.Kind() {
		case api.KindNotFound:
			if apiErr.FromServer() {
				lines = append(lines, "hint: check the ids with: sprintdesk project list / sprintdesk overview <project-id>")
			}
		case api.KindInvalidArgument:
			lines = append(lines, "hint: run the command with --help to see accepted values.")
		case api.KindInternal:
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase SPRINTDESK_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a sprintdesk server is running at SPRINTDESK_API_URL.",
			"hint: start local server manually with: sprintdesk srv",
			"hint: you can increase SPRINTDESK_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
