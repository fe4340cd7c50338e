package module

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/infra"
	"github.com/eliteGoblin/evilyn/internal/state"
	"github.com/eliteGoblin/evilyn/test/fixtures"
)

// harness bundles an Env with handles on its fakes.
type harness struct {
	env     Env
	home    string
	store   *infra.TOMLStore
	clock   *fixtures.FakeClock
	rng     *fixtures.ScriptedRandom
	journal *fixtures.MemoryJournal
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	home := t.TempDir()
	store := infra.NewTOMLStore(zap.NewNop())
	clock := fixtures.NewFakeClock(fixtures.Epoch)
	base, _, err := state.OpenBase(store, home, Names(), clock, zap.NewNop())
	require.NoError(t, err)

	h := &harness{
		home:    home,
		store:   store,
		clock:   clock,
		rng:     &fixtures.ScriptedRandom{DefaultFloat: 0.99},
		journal: &fixtures.MemoryJournal{},
	}
	h.env = Env{
		Base:    base,
		Store:   store,
		Clock:   clock,
		Rand:    h.rng,
		Journal: h.journal,
		Logger:  zap.NewNop(),
		Timings: DefaultTimings(),
	}
	return h
}

// document returns the raw bytes of a module document.
func (h *harness) document(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(h.store.Path(ModuleHome(h.home, name), name))
	require.NoError(t, err)
	return data
}

// seed writes a module document before the module is constructed.
func (h *harness) seed(t *testing.T, name string, doc any) {
	t.Helper()
	require.NoError(t, h.store.Save(doc, ModuleHome(h.home, name), name))
}

func (h *harness) advance(d time.Duration) time.Time {
	h.clock.Advance(d)
	return h.clock.Now()
}

var _ domain.Random = (*fixtures.ScriptedRandom)(nil)
