//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/infra"
	"github.com/eliteGoblin/evilyn/internal/module"
	"github.com/eliteGoblin/evilyn/internal/state"
	"github.com/eliteGoblin/evilyn/internal/usecase"
	"github.com/eliteGoblin/evilyn/test/fixtures"
)

// process is one daemon lifetime over a home directory.
type process struct {
	scheduler *usecase.Scheduler
	journal   *infra.SQLiteJournal
	wallpaper *fixtures.RecordingPayload
	syssound  *fixtures.RecordingPayload
	mouse     *fixtures.RecordingPayload
	clip      *fixtures.FakeClipboard
}

func boot(home string, clock *fixtures.FakeClock, rng *fixtures.ScriptedRandom) *process {
	logger := zap.NewNop()
	store := infra.NewTOMLStore(logger)

	base, _, err := state.OpenBase(store, home, module.Names(), clock, logger)
	Expect(err).NotTo(HaveOccurred())

	journal, err := infra.OpenSQLiteJournal(home)
	Expect(err).NotTo(HaveOccurred())

	p := &process{
		journal:   journal,
		wallpaper: &fixtures.RecordingPayload{},
		syssound:  &fixtures.RecordingPayload{},
		mouse:     &fixtures.RecordingPayload{},
		clip:      &fixtures.FakeClipboard{Text: "Hello;World"},
	}
	registry := module.Build(module.Env{
		Base:    base,
		Store:   store,
		Clock:   clock,
		Rand:    rng,
		Journal: journal,
		Logger:  logger,
		Timings: module.DefaultTimings(),
	}, module.Collaborators{
		Wallpaper: p.wallpaper,
		SysSound:  p.syssound,
		Mouse:     p.mouse,
		Clipboard: p.clip,
	})
	Expect(registry.Names()).To(Equal(module.Names()))

	p.scheduler = usecase.NewScheduler(base, registry, clock, logger)
	return p
}

func (p *process) stop() {
	Expect(p.journal.Close()).To(Succeed())
}

func (p *process) calls() []int {
	return []int{p.wallpaper.Calls(), p.syssound.Calls(), p.mouse.Calls()}
}

var _ = Describe("Scheduling across restarts", func() {
	var (
		home  string
		clock *fixtures.FakeClock
		rng   *fixtures.ScriptedRandom
		ctx   context.Context
	)

	BeforeEach(func() {
		home = GinkgoT().TempDir()
		clock = fixtures.NewFakeClock(fixtures.Epoch)
		// skip every tamper roll unless a test says otherwise
		rng = &fixtures.ScriptedRandom{DefaultFloat: 0.0}
		ctx = context.Background()
	})

	Context("first run", func() {
		It("persists defaults and fires every time-gated module once", func() {
			p := boot(home, clock, rng)
			defer p.stop()

			for _, name := range []string{"config.toml", "wallpaper/wallpaper.toml", "syssound/syssound.toml", "mouse/mouse.toml", "clipboard/clipboard.toml"} {
				Expect(filepath.Join(home, name)).To(BeAnExistingFile())
			}

			result := p.scheduler.Tick(ctx)
			Expect(result.Triggered).To(Equal(module.Names()))
			Expect(result.Errors).To(BeEmpty())
			Expect(p.calls()).To(Equal([]int{1, 1, 1}))

			p.scheduler.Tick(ctx)
			Expect(p.calls()).To(Equal([]int{1, 1, 1}))

			firings, err := p.journal.Recent(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(firings).To(HaveLen(3))
			Expect(firings[0].Module).To(Equal(module.MouseName))
		})
	})

	Context("after a restart", func() {
		It("neither loses nor repeats a due firing", func() {
			first := boot(home, clock, rng)
			first.scheduler.Tick(ctx)
			Expect(first.calls()).To(Equal([]int{1, 1, 1}))
			first.stop()

			second := boot(home, clock, rng)
			defer second.stop()

			second.scheduler.Tick(ctx)
			Expect(second.calls()).To(Equal([]int{0, 0, 0}))

			// scripted draws are 0, so range modules rearm at their minimum
			clock.Advance(time.Minute)
			second.scheduler.Tick(ctx)
			Expect(second.calls()).To(Equal([]int{1, 1, 0}))

			clock.Advance(48 * time.Hour)
			second.scheduler.Tick(ctx)
			second.scheduler.Tick(ctx)
			Expect(second.calls()).To(Equal([]int{2, 2, 1}))

			firings, err := second.journal.Recent(ctx, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(firings).To(HaveLen(3 + 5))
		})
	})

	Context("edits from another process", func() {
		It("suspends every module at level 0 and resumes when raised", func() {
			p := boot(home, clock, rng)
			defer p.stop()

			cli, _, err := state.OpenBase(infra.NewTOMLStore(zap.NewNop()), home, module.Names(), clock, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			Expect(cli.SetAnnoyanceLevel(0)).To(Succeed())

			result := p.scheduler.Tick(ctx)
			Expect(result.Suspended).To(BeTrue())
			Expect(p.calls()).To(Equal([]int{0, 0, 0}))

			Expect(cli.SetAnnoyanceLevel(4)).To(Succeed())
			result = p.scheduler.Tick(ctx)
			Expect(result.Level).To(Equal(uint8(4)))
			Expect(p.calls()).To(Equal([]int{1, 1, 1}))
		})

		It("skips a module disabled on disk", func() {
			p := boot(home, clock, rng)
			defer p.stop()

			cli, _, err := state.OpenBase(infra.NewTOMLStore(zap.NewNop()), home, module.Names(), clock, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			Expect(cli.SetModuleEnabled(module.WallpaperName, false)).To(Succeed())

			result := p.scheduler.Tick(ctx)
			Expect(result.Triggered).NotTo(ContainElement(module.WallpaperName))
			Expect(p.calls()).To(Equal([]int{0, 1, 1}))
		})
	})

	Context("corrupt documents", func() {
		It("replaces them with defaults and keeps running", func() {
			dir := filepath.Join(home, module.MouseName)
			Expect(os.MkdirAll(dir, 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "mouse.toml"), []byte("[timing\nnext_trigger = ???"), 0644)).To(Succeed())

			p := boot(home, clock, rng)
			defer p.stop()

			p.scheduler.Tick(ctx)
			Expect(p.mouse.Calls()).To(Equal(1))

			data, err := os.ReadFile(filepath.Join(dir, "mouse.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("next_trigger"))
		})
	})

	Context("clipboard tampering", func() {
		It("journals each applied action and writes once", func() {
			rng.DefaultFloat = 0.99
			p := boot(home, clock, rng)
			defer p.stop()

			clock.Advance(5 * time.Minute)
			p.scheduler.Tick(ctx)

			Expect(p.clip.Writes).To(Equal(1))
			Expect(p.clip.Text).To(Equal("DLROW\u037eOLLEH"))

			firings, err := p.journal.Recent(ctx, 100)
			Expect(err).NotTo(HaveOccurred())
			var tamper []string
			for _, f := range firings {
				if f.Module == module.ClipboardName {
					tamper = append(tamper, f.Action)
				}
			}
			Expect(tamper).To(ConsistOf(
				"to_uppercase", "to_lowercase", "reverse_string", "swap_case", "semicolon_to_greek_question_mark",
			))

			p.scheduler.Tick(ctx)
			Expect(p.clip.Writes).To(Equal(1))
		})
	})
})
