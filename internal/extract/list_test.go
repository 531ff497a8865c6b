// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "plain JSON list",
			in:   `["quantum computing", "error correction", "qubits"]`,
			want: []string{"quantum computing", "error correction", "qubits"},
		},
		{
			name: "JSON list with surrounding whitespace",
			in:   "\n\n  [\"a\", \"b\"]  \n",
			want: []string{"a", "b"},
		},
		{
			name: "fenced json block",
			in:   "Here are the keywords:\n```json\n[\"量子计算\", \"量子纠错\", \"超导量子比特\"]\n```\nGood luck.",
			want: []string{"量子计算", "量子纠错", "超导量子比特"},
		},
		{
			name: "untagged fence",
			in:   "```\n[\"x\", \"y\"]\n```",
			want: []string{"x", "y"},
		},
		{
			name: "bracket span inside prose",
			in:   "The keywords are [\"alpha\", \"beta\"] as requested.",
			want: []string{"alpha", "beta"},
		},
		{
			name: "bracket span across lines",
			in:   "Sure!\n[\n  \"alpha\",\n  \"beta\"\n]\nThanks",
			want: []string{"alpha", "beta"},
		},
		{
			name: "numbers rendered as JSON text",
			in:   `[1, 2.5, true, "x"]`,
			want: []string{"1", "2.5", "true", "x"},
		},
		{
			name: "line fallback strips enumeration",
			in:   "1. quantum computing\n2. error correction.\n3. qubit fidelity,\n4. ignored",
			want: []string{"quantum computing", "error correction", "qubit fidelity"},
		},
		{
			name: "line fallback strips quotes",
			in:   "\"topological codes\",\n'surface codes'\n[anyons]",
			want: []string{"topological codes", "surface codes", "anyons"},
		},
		{
			name: "bracket span followed by more brackets",
			in:   "Keywords: [\"alpha\", \"beta\"] (see [1]).",
			want: []string{"alpha", "beta"},
		},
		{
			name: "fewer than three lines without a list",
			in:   "no list here\nstill nothing",
			want: []string{},
		},
		{
			name: "JSON object is not a list",
			in:   `{"keywords": "quantum"}`,
			want: []string{},
		},
		{
			name: "whitespace only",
			in:   "   \n\t  ",
			want: []string{},
		},
		{
			name: "empty",
			in:   "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := List(tt.in, zaptest.NewLogger(t))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListIdempotentThroughJSON(t *testing.T) {
	inputs := []string{
		"```json\n[\"a\", \"b\", \"c\"]\n```",
		"1. one\n2. two\n3. three",
		`Result: ["深度学习", "图神经网络"]`,
	}
	for _, in := range inputs {
		first := List(in, nil)
		require.NotEmpty(t, first)

		encoded, err := json.Marshal(first)
		require.NoError(t, err)

		assert.Equal(t, first, List(string(encoded), nil))
	}
}

func TestListNestedListFallsThrough(t *testing.T) {
	// A list of lists cannot be flattened; no other strategy recovers it.
	got := List(`[["a", "b"], ["c"]]`, nil)
	assert.Empty(t, got)
}

func TestListLogsWarningOnFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	got := List("nothing useful", log)
	assert.Empty(t, got)
	assert.Equal(t, 1, logs.FilterMessage("no list found in model response").Len())
}

func TestListWhitespaceDoesNotLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	List("   ", zap.New(core))
	assert.Equal(t, 0, logs.Len())
}

func TestGroups(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{
			name: "list of lists",
			in:   `[["quantum", "error correction"], ["qubit", "decoherence"]]`,
			want: [][]string{{"quantum", "error correction"}, {"qubit", "decoherence"}},
		},
		{
			name: "fenced list of lists",
			in:   "```json\n[\n  [\"a\", \"b\"],\n  [\"c\"]\n]\n```",
			want: [][]string{{"a", "b"}, {"c"}},
		},
		{
			name: "bare strings promoted",
			in:   `["a", ["b", "c"]]`,
			want: [][]string{{"a"}, {"b", "c"}},
		},
		{
			name: "line fallback yields single groups",
			in:   "1. a\n2. b\n3. c",
			want: [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name: "nested list inside prose",
			in:   "Here are the groups: [[\"quantum\", \"error correction\"], [\"qubit\", \"decoherence\"]] hope this helps",
			want: [][]string{{"quantum", "error correction"}, {"qubit", "decoherence"}},
		},
		{
			name: "nested list across lines inside prose",
			in:   "Sure:\n[\n  [\"a\", \"b\"],\n  [\"c\"]\n]\nDone.",
			want: [][]string{{"a", "b"}, {"c"}},
		},
		{
			name: "object inside group rejected",
			in:   `[[{"k": "v"}]]`,
			want: [][]string{},
		},
		{
			name: "nothing",
			in:   "",
			want: [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Groups(tt.in, zaptest.NewLogger(t)))
		})
	}
}
