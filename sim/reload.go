package sim

import (
	"fmt"
	"path"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
	"github.com/milk9111/nightwatch/ecs/entity"
	"github.com/milk9111/nightwatch/prefabs"
	"github.com/milk9111/nightwatch/script"
)

// Apply reloads one changed prefab or script. Live entities keep their
// state and pick up the new constants.
func (s *Simulation) Apply(c prefabs.Change) error {
	if c.Script {
		return s.ReloadScript(path.Base(c.Name))
	}
	return s.ReloadPrefab(c.Name)
}

// ReloadPrefab re-reads a yaml prefab by file name.
func (s *Simulation) ReloadPrefab(name string) error {
	if typeName, ok := prefabs.EnemyTypeOf(name); ok {
		return s.reloadEnemy(typeName)
	}
	switch path.Base(name) {
	case prefabs.PlayerFile:
		return s.reloadPlayer()
	case prefabs.ArenaFile:
		s.log.Printf("sim: %s changed; walls apply on the next run", name)
		return nil
	}
	return fmt.Errorf("sim: no reload for %q", name)
}

func (s *Simulation) reloadPlayer() error {
	spec, err := prefabs.LoadPlayerSpec()
	if err != nil {
		return err
	}
	s.playerSpec = spec
	e, ok := ecs.First(s.world, component.PlayerTagComponent.Kind())
	if !ok {
		return nil
	}
	if p, ok := ecs.Get(s.world, e, component.PlayerComponent.Kind()); ok {
		p.WalkSpeed, p.SprintSpeed = spec.WalkSpeed, spec.SprintSpeed
		p.WalkNoise, p.SprintNoise = spec.WalkNoise, spec.SprintNoise
		p.NoiseInterval = spec.NoiseInterval
	}
	if fl, ok := ecs.Get(s.world, e, component.FlashlightComponent.Kind()); ok {
		fl.Controller.Retune(spec.Flashlight)
	}
	s.log.Printf("sim: reloaded %s", prefabs.PlayerFile)
	return nil
}

func (s *Simulation) reloadEnemy(typeName string) error {
	spec, err := prefabs.LoadEnemySpec(typeName)
	if err != nil {
		return err
	}
	prev, known := s.enemySpecs[typeName]
	s.enemySpecs[typeName] = spec
	scriptChanged := !known || prev.Script != spec.Script

	n := 0
	var retErr error
	ecs.ForEach(s.world, component.EnemyComponent.Kind(), func(_ ecs.Entity, en *component.Enemy) {
		if en.Type != typeName || en.Agent == nil {
			return
		}
		en.Agent.Retune(spec.Params())
		if scriptChanged {
			if err := s.rehook(en, spec); err != nil && retErr == nil {
				retErr = err
			}
		}
		n++
	})
	s.log.Printf("sim: reloaded %s (%d live)", prefabs.EnemyFile(typeName), n)
	return retErr
}

// ReloadScript recompiles a hook script and swaps it into every enemy using
// it. A script that fails to compile leaves the old one running.
func (s *Simulation) ReloadScript(name string) error {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return err
	}
	prog, err := script.Compile(name, src)
	if err != nil {
		return err
	}
	s.programs[name] = prog

	var retErr error
	ecs.ForEach(s.world, component.EnemyComponent.Kind(), func(_ ecs.Entity, en *component.Enemy) {
		spec, ok := s.enemySpecs[en.Type]
		if !ok || spec.Script != name {
			return
		}
		if err := s.rehook(en, spec); err != nil && retErr == nil {
			retErr = err
		}
	})
	s.log.Printf("sim: reloaded script %s", name)
	return retErr
}

// rehook gives en a fresh hook instance for spec. Script state carries over
// when the script name is unchanged.
func (s *Simulation) rehook(en *component.Enemy, spec prefabs.EnemySpec) error {
	hooks, err := s.hooksFor(spec)
	if err != nil {
		return err
	}
	if hooks == nil {
		en.Hooks = nil
		en.Agent.SetHook(nil)
		return nil
	}
	if en.Hooks != nil && en.Hooks.Name() == hooks.Name() {
		if err := hooks.SetState(en.Hooks.State()); err != nil {
			return err
		}
	}
	hooks.HealthPercent = en.Agent.HealthPercent
	en.Hooks = hooks
	en.Agent.SetHook(entity.StateHook(s.env(), spec.Type, hooks))
	return nil
}
