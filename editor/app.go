package editor

import (
	"fmt"
	"log"

	"github.com/milk9111/meshless/ecs"
)

// State is the editor's top-level mode.
type State int

const (
	StateLoading State = iota
	StateEditor
	StateGame
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEditor:
		return "editor"
	case StateGame:
		return "game"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Loader runs once when the app first updates in StateLoading. An error is
// fatal to startup.
type Loader func(w *ecs.World) error

// App drives a world through Loading -> Editor and between Editor and Game.
type App struct {
	World *ecs.World

	state     State
	schedules map[State]*ecs.Scheduler
	onEnter   map[State][]func(*ecs.World)
	onExit    map[State][]func(*ecs.World)
	listeners []func(ecs.Event)

	loaders     []Loader
	readyChecks []func() bool
	loaded      bool
}

func NewApp(w *ecs.World) *App {
	if w == nil {
		w = ecs.NewWorld()
	}
	return &App{
		World:     w,
		state:     StateLoading,
		schedules: make(map[State]*ecs.Scheduler),
		onEnter:   make(map[State][]func(*ecs.World)),
		onExit:    make(map[State][]func(*ecs.World)),
	}
}

// Plugin bundles systems, loaders and hooks.
type Plugin interface {
	Build(app *App)
}

func (a *App) AddPlugin(p Plugin) {
	if p == nil {
		return
	}
	p.Build(a)
}

// AddSystem runs sys every Update while the app is in state.
func (a *App) AddSystem(state State, sys ecs.System) {
	sched, ok := a.schedules[state]
	if !ok {
		sched = ecs.NewScheduler()
		a.schedules[state] = sched
	}
	sched.Add(sys)
}

func (a *App) OnEnter(state State, fn func(*ecs.World)) {
	a.onEnter[state] = append(a.onEnter[state], fn)
}

func (a *App) OnExit(state State, fn func(*ecs.World)) {
	a.onExit[state] = append(a.onExit[state], fn)
}

// AddLoader registers a loading step.
func (a *App) AddLoader(l Loader) {
	a.loaders = append(a.loaders, l)
}

// AddReadyCheck holds the app in StateLoading until fn reports true, e.g.
// while images are still decoding.
func (a *App) AddReadyCheck(fn func() bool) {
	a.readyChecks = append(a.readyChecks, fn)
}

// AddEventListener receives every world event drained at the end of Update.
func (a *App) AddEventListener(fn func(ecs.Event)) {
	a.listeners = append(a.listeners, fn)
}

func (a *App) State() State {
	return a.state
}

// SetState runs the exit hooks of the current state and the enter hooks of
// next. Setting the current state is a no-op.
func (a *App) SetState(next State) {
	if next == a.state {
		return
	}
	log.Printf("Editor: %s -> %s", a.state, next)
	for _, fn := range a.onExit[a.state] {
		fn(a.World)
	}
	a.state = next
	for _, fn := range a.onEnter[next] {
		fn(a.World)
	}
}

// Update advances loading if needed, runs the current state's systems and
// dispatches queued events.
func (a *App) Update() error {
	if a.state == StateLoading {
		if err := a.load(); err != nil {
			return err
		}
	}
	a.schedules[a.state].Update(a.World)

	for _, evt := range a.World.Events().Drain() {
		for _, fn := range a.listeners {
			fn(evt)
		}
	}
	return nil
}

func (a *App) load() error {
	if !a.loaded {
		for _, l := range a.loaders {
			if err := l(a.World); err != nil {
				return fmt.Errorf("editor: loading: %w", err)
			}
		}
		a.loaded = true
	}
	for _, ready := range a.readyChecks {
		if !ready() {
			return nil
		}
	}
	a.SetState(StateEditor)
	return nil
}
