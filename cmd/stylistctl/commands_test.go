package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/stylist"
	"wardrobeapi/test"
)

const wardrobeJSON = `[
  {"id": "1", "item_type": "top", "color": "white", "sub_type": "oxford shirt", "formality": "smart casual"},
  {"id": "2", "item_type": "bottom", "color": "navy", "sub_type": "chinos", "formality": "smart casual"},
  {"id": "3", "item_type": "shoes", "color": "brown", "sub_type": "loafers", "formality": "smart casual"}
]`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	rulesPath = ""
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fakeBackend(t *testing.T, completer *test.FakeCompleter) {
	t.Helper()
	previous := newCompleter
	newCompleter = func(ctx context.Context) (stylist.Completer, error) { return completer, nil }
	t.Cleanup(func() { newCompleter = previous })
}

func TestRulesCommand(t *testing.T) {
	out, err := run(t, "rules")
	require.NoError(t, err)
	for _, o := range stylist.Vocabulary {
		assert.Contains(t, out, string(o))
	}

	out, err = run(t, "rules", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "job interview:")
	assert.Contains(t, out, "temperature:")
}

func TestClassifyOffline(t *testing.T) {
	out, err := run(t, "classify", "black", "tie", "gala", "on", "friday")
	require.NoError(t, err)
	assert.Equal(t, "black tie event (offline)", strings.TrimSpace(out))
}

func TestClassifyLive(t *testing.T) {
	fakeBackend(t, &test.FakeCompleter{Routes: test.ClassifierRoute(stylist.DateNight)})

	out, err := run(t, "classify", "--live", "dinner for two by the river")
	require.NoError(t, err)
	assert.Equal(t, "date night (live)", strings.TrimSpace(out))
}

func TestValidateRepairsCandidate(t *testing.T) {
	wardrobe := writeFile(t, "wardrobe.json", wardrobeJSON)
	// shoes are missing, "9" is not in the wardrobe
	candidate := writeFile(t, "candidate.txt", "### Output:\n```json\n"+
		`{"outfit_items": [{"id": 1, "item_type": "top"}, {"id": "2", "item_type": "bottom"}, {"id": "9", "item_type": "top"}], "description": "Smart."}`+
		"\n```")

	out, err := run(t, "validate", "--wardrobe", wardrobe, "--candidate", candidate, "--occasion", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "composition ok")
	assert.Contains(t, out, `warning: Removed item "9" because it is not in your wardrobe`)
	assert.Contains(t, out, `"id": "3"`)
	assert.Contains(t, out, `"occasion": "work"`)
}

func TestValidateRejectsUnknownOccasion(t *testing.T) {
	wardrobe := writeFile(t, "wardrobe.json", wardrobeJSON)
	candidate := writeFile(t, "candidate.json", `{"outfit_items": []}`)

	_, err := run(t, "validate", "--wardrobe", wardrobe, "--candidate", candidate, "--occasion", "moon landing")
	assert.ErrorContains(t, err, "unknown occasion")
}

func TestGenerateCommand(t *testing.T) {
	wardrobe := writeFile(t, "wardrobe.json", wardrobeJSON)
	completer := &test.FakeCompleter{Routes: test.ClassifierRoute(stylist.Work)}
	completer.Push("### Output:\n" + `{"outfit_items": [{"id": "1", "item_type": "top"}, {"id": "2", "item_type": "bottom"}, {"id": "3", "item_type": "shoes"}], "description": "Office ready.", "styling_tips": "Tuck the shirt."}`)
	fakeBackend(t, completer)

	out, err := run(t, "generate", "--wardrobe", wardrobe, "office", "day", "tomorrow")
	require.NoError(t, err)
	assert.Contains(t, out, "composition ok")
	assert.Contains(t, out, `"description": "Office ready."`)
	assert.Contains(t, out, `"occasion": "work"`)
}
