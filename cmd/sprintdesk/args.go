package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sprintdesk/internal/api"
)


func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}

func requireAtLeastArgs(min int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < min {
			return errors.New(message)
		}
		return nil
	}
}

// parseID parses a positive integer id argument.
func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func parseIDs(args []string, names ...string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for i, name := range names {
		id, err := parseID(args[i], name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseIDList parses a comma separated id list; an empty string yields an empty list.
func parseIDList(raw string) ([]int64, error) {
	parts := splitCommaList(raw)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := parseID(part, "id")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseTimeFlag accepts a calendar date or an RFC 3339 timestamp.
// Calendar dates stay zone-free so the server places them in its configured timezone.
func parseTimeFlag(raw, name string) (api.Timestamp, error) {
	ts, err := api.ParseTimestamp(raw)
	if err != nil {
		return api.Timestamp{}, fmt.Errorf("invalid --%s %q (use YYYY-MM-DD or RFC 3339)", name, raw)
	}
	return ts, nil
}

func splitCommaList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// parseMetadataFlags parses --meta key=value pairs and --meta-json into a
// single map. JSON is parsed first, then key=value pairs overlay on top.
func parseMetadataFlags(kvPairs []string, rawJSON string) (map[string]any, error) {
	m := make(map[string]any)

	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &m); err != nil {
			return nil, fmt.Errorf("invalid --meta-json: %w", err)
		}
	}

	for _, pair := range kvPairs {
		idx := strings.IndexByte(pair, '=')
		if idx <= 0 {
			return nil, fmt.Errorf("invalid --meta format %q, expected key=value", pair)
		}
		m[pair[:idx]] = pair[idx+1:]
	}

	return m, nil
}

// flagSetter collects optional flags into request fields only when they were passed.
type flagSetter struct {
	cmd *cobra.Command
	err error
}

func (f *flagSetter) changed(name string) bool {
	return f.err == nil && f.cmd.Flags().Changed(name)
}

func (f *flagSetter) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

func optionalString(f *flagSetter, name, value string) api.Optional[string] {
	if !f.changed(name) {
		return api.Optional[string]{}
	}
	return api.Some(value)
}

func optionalFloat(f *flagSetter, name string, value float64) api.Optional[float64] {
	if !f.changed(name) {
		return api.Optional[float64]{}
	}
	return api.Some(value)
}

func optionalID(f *flagSetter, name string, value int64) api.Optional[int64] {
	if !f.changed(name) {
		return api.Optional[int64]{}
	}
	if value == 0 {
		return api.Null[int64]()
	}
	if value < 0 {
		f.fail(fmt.Errorf("invalid --%s %d", name, value))
	}
	return api.Some(value)
}

// optionalTime treats an empty or "none" value as an explicit null.
func optionalTime(f *flagSetter, name, raw string) api.Optional[api.Timestamp] {
	if !f.changed(name) {
		return api.Optional[api.Timestamp]{}
	}
	if isNoneValue(raw) {
		return api.Null[api.Timestamp]()
	}
	t, err := parseTimeFlag(raw, name)
	if err != nil {
		f.fail(err)
		return api.Optional[api.Timestamp]{}
	}
	return api.Some(t)
}

func timePtrFlag(f *flagSetter, name, raw string) *api.Timestamp {
	if !f.changed(name) {
		return nil
	}
	t, err := parseTimeFlag(raw, name)
	if err != nil {
		f.fail(err)
		return nil
	}
	return &t
}

func stringPtrFlag(f *flagSetter, name, value string) *string {
	if !f.changed(name) {
		return nil
	}
	return &value
}

func floatPtrFlag(f *flagSetter, name string, value float64) *float64 {
	if !f.changed(name) {
		return nil
	}
	return &value
}

func idPtrFlag(f *flagSetter, name string, value int64) *int64 {
	if !f.changed(name) {
		return nil
	}
	if value <= 0 {
		f.fail(fmt.Errorf("invalid --%s %d", name, value))
		return nil
	}
	return &value
}

func isNoneValue(raw string) bool {
	value := strings.TrimSpace(raw)
	return value == "" || strings.EqualFold(value, "none")
}
