// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// =============================================================================
// FLOW SNAPSHOT
// =============================================================================

// FlowMessage is one entry of the model context the backend reports.
type FlowMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FlowSnapshot is the backend's view of the last exchange: the tool calls it
// made, the full model context and the parameters used. Only the most recent
// snapshot is kept.
type FlowSnapshot struct {
	ToolLogs []string       `json:"tool_logs"`
	Messages []FlowMessage  `json:"messages"`
	Params   map[string]any `json:"params"`
}

// Clone returns a deep-enough copy of the snapshot; param values are shared.
func (f *FlowSnapshot) Clone() *FlowSnapshot {
	if f == nil {
		return nil
	}
	out := &FlowSnapshot{
		ToolLogs: append([]string(nil), f.ToolLogs...),
		Messages: append([]FlowMessage(nil), f.Messages...),
	}
	if f.Params != nil {
		out.Params = make(map[string]any, len(f.Params))
		for k, v := range f.Params {
			out.Params[k] = v
		}
	}
	return out
}

// ToolCount returns the number of tool calls in the snapshot.
func (f *FlowSnapshot) ToolCount() int {
	if f == nil {
		return 0
	}
	return len(f.ToolLogs)
}

// MessageCount returns the number of context messages in the snapshot.
func (f *FlowSnapshot) MessageCount() int {
	if f == nil {
		return 0
	}
	return len(f.Messages)
}

// EstimateTokens approximates the token size of the snapshot as its JSON
// length divided by four, rounded to the nearest integer.
func (f *FlowSnapshot) EstimateTokens() int {
	if f == nil {
		return 0
	}
	data, err := json.Marshal(f)
	if err != nil {
		return 0
	}
	return int(math.Round(float64(len(data)) / 4))
}

// Param is a single name/value pair from the snapshot parameters.
type Param struct {
	Name  string
	Value string
}

// SortedParams returns the parameters ordered by name with values formatted
// for display. Missing values are shown as "N/A".
func (f *FlowSnapshot) SortedParams() []Param {
	if f == nil || len(f.Params) == 0 {
		return nil
	}
	names := make([]string, 0, len(f.Params))
	for name := range f.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]Param, 0, len(names))
	for _, name := range names {
		value := "N/A"
		if v := f.Params[name]; v != nil {
			value = fmt.Sprint(v)
		}
		params = append(params, Param{Name: name, Value: value})
	}
	return params
}

// =============================================================================
// REPLY
// =============================================================================

// Reply is a decoded assistant response handed from the transport to the
// conversation controller.
type Reply struct {
	Content string
	Logs    []string
	Flow    *FlowSnapshot
}
