package module

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/state"
	"github.com/eliteGoblin/evilyn/test/fixtures"
)

// newEligibleClipboard builds the module and moves the clock past the
// initial jitter so every action is eligible.
func newEligibleClipboard(t *testing.T, h *harness, clip *fixtures.FakeClipboard) *Clipboard {
	t.Helper()
	c, outcome, err := NewClipboard(h.env, clip)
	require.NoError(t, err)
	require.Equal(t, state.OutcomeCreated, outcome)
	h.advance(initialJitterMin)
	return c
}

func TestClipboard_TriggerAppliesAndWritesBack(t *testing.T) {
	h := newHarness(t)
	clip := &fixtures.FakeClipboard{Text: "Hello;World"}
	c := newEligibleClipboard(t, h, clip)

	require.NoError(t, c.Trigger(context.Background()))

	assert.Equal(t, "DLROW\u037eOLLEH", clip.Text)
	assert.Equal(t, 1, clip.Writes)
	assert.Equal(t, []string{
		"to_uppercase", "to_lowercase", "reverse_string", "swap_case", "semicolon_to_greek_question_mark",
	}, h.journal.Actions())
	for _, f := range h.journal.Firings {
		assert.Equal(t, ClipboardName, f.Module)
		assert.Equal(t, h.clock.Now(), f.FiredAt)
	}
}

func TestClipboard_NothingFiredMeansNoWrite(t *testing.T) {
	h := newHarness(t)
	h.rng.DefaultFloat = 0.0
	clip := &fixtures.FakeClipboard{Text: "untouched"}
	c := newEligibleClipboard(t, h, clip)

	require.NoError(t, c.Trigger(context.Background()))

	assert.Equal(t, 1, clip.Reads)
	assert.Equal(t, 0, clip.Writes)
	assert.Empty(t, h.journal.Firings)
}

func TestClipboard_NotYetEligibleMeansNoWrite(t *testing.T) {
	h := newHarness(t)
	clip := &fixtures.FakeClipboard{Text: "untouched"}
	c, _, err := NewClipboard(h.env, clip)
	require.NoError(t, err)

	// initial jitter is at least 5 minutes
	require.NoError(t, c.Trigger(context.Background()))

	assert.Equal(t, 0, clip.Writes)
	assert.Equal(t, "untouched", clip.Text)
}

func TestClipboard_ReadFailureSkipsPass(t *testing.T) {
	h := newHarness(t)
	clip := &fixtures.FakeClipboard{ReadErr: domain.ErrClipboardUnavailable}
	c := newEligibleClipboard(t, h, clip)
	before := c.Status().Actions

	err := c.Trigger(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrClipboardUnavailable))
	assert.Equal(t, 0, clip.Writes)
	assert.Empty(t, h.journal.Firings)
	assert.Equal(t, before, c.Status().Actions)
}

func TestClipboard_WriteFailureKeepsAdvances(t *testing.T) {
	h := newHarness(t)
	clip := &fixtures.FakeClipboard{Text: "abc", WriteErr: errors.New("clipboard busy")}
	c := newEligibleClipboard(t, h, clip)
	now := h.clock.Now()

	err := c.Trigger(context.Background())
	require.Error(t, err)

	for _, a := range c.Status().Actions {
		assert.Equal(t, now.Add(a.Cooldown), a.NextEligible, a.Name)
	}
	require.Len(t, h.journal.Firings, 5)
	for _, f := range h.journal.Firings {
		assert.Contains(t, f.Error, "clipboard busy", f.Action)
	}

	// cooldowns hold on the next pass even though the write never landed
	clip.WriteErr = nil
	require.NoError(t, c.Trigger(context.Background()))
	assert.Equal(t, 1, clip.Writes, "only the failed write was attempted")
	assert.Equal(t, "abc", clip.Text)
}

func TestClipboard_DryRunJournalsWithoutWriting(t *testing.T) {
	h := newHarness(t)
	h.seed(t, ClipboardName, domain.ClipboardState{
		Enabled:       true,
		ReadContent:   true,
		WriteContent:  false,
		SkipThreshold: DefaultSkipThreshold,
	})
	clip := &fixtures.FakeClipboard{Text: "abc"}
	c, outcome, err := NewClipboard(h.env, clip)
	require.NoError(t, err)
	assert.Equal(t, state.OutcomeLoaded, outcome)
	h.advance(initialJitterMin)

	require.NoError(t, c.Trigger(context.Background()))

	assert.Equal(t, 0, clip.Writes)
	require.Len(t, h.journal.Firings, 5)
	assert.Empty(t, h.journal.Firings[0].Error)
}

func TestClipboard_SuccessfulWriteJournalsNoError(t *testing.T) {
	h := newHarness(t)
	c := newEligibleClipboard(t, h, &fixtures.FakeClipboard{Text: "abc"})

	require.NoError(t, c.Trigger(context.Background()))

	require.Len(t, h.journal.Firings, 5)
	for _, f := range h.journal.Firings {
		assert.Empty(t, f.Error, f.Action)
	}
}

func TestClipboard_MissingKeysKeepDefaults(t *testing.T) {
	h := newHarness(t)
	dir := ModuleHome(h.home, ClipboardName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(h.store.Path(dir, ClipboardName), []byte("write_content = false\n"), 0644))

	c, outcome, err := NewClipboard(h.env, &fixtures.FakeClipboard{Text: "abc"})
	require.NoError(t, err)

	assert.Equal(t, state.OutcomeLoaded, outcome)
	doc := c.State()
	assert.Equal(t, DefaultSkipThreshold, doc.SkipThreshold, "absent threshold is not zero")
	assert.True(t, doc.Enabled)
	assert.True(t, doc.ReadContent)
	assert.False(t, doc.WriteContent)
	assert.Equal(t, DefaultSkipThreshold, c.tamperer.Threshold())
}

func TestClipboard_ReadContentOffSkipsClipboard(t *testing.T) {
	h := newHarness(t)
	h.seed(t, ClipboardName, domain.ClipboardState{Enabled: true, SkipThreshold: DefaultSkipThreshold})
	clip := &fixtures.FakeClipboard{Text: "abc"}
	c, _, err := NewClipboard(h.env, clip)
	require.NoError(t, err)

	require.NoError(t, c.Trigger(context.Background()))
	assert.Equal(t, 0, clip.Reads)
}

func TestClipboard_DisabledModuleDoesNothing(t *testing.T) {
	h := newHarness(t)
	clip := &fixtures.FakeClipboard{Text: "abc"}
	c := newEligibleClipboard(t, h, clip)
	require.NoError(t, c.SetEnabled(false))

	require.NoError(t, c.Trigger(context.Background()))

	assert.Equal(t, 0, clip.Reads)
	assert.False(t, c.IsEnabled())
}

func TestClipboard_DisabledActionsFromDocument(t *testing.T) {
	h := newHarness(t)
	h.seed(t, ClipboardName, domain.ClipboardState{
		Enabled:         true,
		ReadContent:     true,
		WriteContent:    true,
		SkipThreshold:   DefaultSkipThreshold,
		DisabledActions: []string{"reverse_string", "bogus"},
	})
	clip := &fixtures.FakeClipboard{Text: "Hello;World"}
	c, _, err := NewClipboard(h.env, clip)
	require.NoError(t, err)
	h.advance(initialJitterMin)

	require.NoError(t, c.Trigger(context.Background()))

	assert.Equal(t, "HELLO\u037eWORLD", clip.Text)
	for _, a := range c.Status().Actions {
		assert.Equal(t, a.Name != "reverse_string", a.Enabled, a.Name)
	}
}

func TestClipboard_SetActionEnabledPersists(t *testing.T) {
	h := newHarness(t)
	c, _, err := NewClipboard(h.env, &fixtures.FakeClipboard{})
	require.NoError(t, err)

	require.NoError(t, c.SetActionEnabled(TransformSwapCase, false))
	require.NoError(t, c.SetActionEnabled(TransformSwapCase, false))
	assert.Equal(t, []string{"swap_case"}, c.State().DisabledActions)

	reloaded, outcome, err := NewClipboard(h.env, &fixtures.FakeClipboard{})
	require.NoError(t, err)
	assert.Equal(t, state.OutcomeLoaded, outcome)
	for _, a := range reloaded.Status().Actions {
		assert.Equal(t, a.Name != "swap_case", a.Enabled, a.Name)
	}

	require.NoError(t, reloaded.SetActionEnabled(TransformSwapCase, true))
	assert.Empty(t, reloaded.State().DisabledActions)
}

func TestClipboard_OutOfRangeThresholdFallsBack(t *testing.T) {
	h := newHarness(t)
	h.seed(t, ClipboardName, domain.ClipboardState{Enabled: true, SkipThreshold: 3})

	c, _, err := NewClipboard(h.env, &fixtures.FakeClipboard{})
	require.NoError(t, err)

	assert.Equal(t, DefaultSkipThreshold, c.State().SkipThreshold)
}

func TestClipboard_StatusHasNoTimeGate(t *testing.T) {
	h := newHarness(t)
	c, _, err := NewClipboard(h.env, &fixtures.FakeClipboard{})
	require.NoError(t, err)

	st := c.Status()
	assert.True(t, st.NextTrigger.IsZero())
	assert.Len(t, st.Actions, 5)
	for _, a := range st.Actions {
		assert.WithinRange(t, a.NextEligible, fixtures.Epoch.Add(initialJitterMin), fixtures.Epoch.Add(initialJitterMax))
		assert.Greater(t, a.Cooldown, time.Duration(0))
	}
}
