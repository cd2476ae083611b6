package prefabs

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/flashlight"
	"github.com/milk9111/nightwatch/player"
	"gopkg.in/yaml.v3"
)

const (
	PlayerFile = "player.yaml"
	ArenaFile  = "arena.yaml"

	enemyPrefix = "enemy_"
)

func LoadSpec[T any](filename string) (T, error) {
	var spec T
	if err := LoadSpecInto(filename, &spec); err != nil {
		var zero T
		return zero, err
	}
	return spec, nil
}

// LoadSpecInto decodes filename over dst, so fields missing from the YAML
// keep whatever dst already held.
func LoadSpecInto[T any](filename string, dst *T) error {
	data, err := Load(filename)
	if err != nil {
		return fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return nil
}

type PlayerSpec struct {
	Name        string  `yaml:"name"`
	Radius      float64 `yaml:"radius"`
	WalkSpeed   float64 `yaml:"walk_speed"`
	SprintSpeed float64 `yaml:"sprint_speed"`

	// Footstep noise volumes and how often a moving player makes one.
	WalkNoise     float64 `yaml:"walk_noise"`
	SprintNoise   float64 `yaml:"sprint_noise"`
	NoiseInterval float64 `yaml:"noise_interval"`

	Stamina    player.StaminaConfig `yaml:"stamina"`
	Health     player.HealthConfig  `yaml:"health"`
	Flashlight flashlight.Config    `yaml:"flashlight"`
	Color      YAMLColor            `yaml:"color"`
}

func DefaultPlayerSpec() PlayerSpec {
	return PlayerSpec{
		Name:          "player",
		Radius:        24,
		WalkSpeed:     450,
		SprintSpeed:   900,
		WalkNoise:     0.3,
		SprintNoise:   1,
		NoiseInterval: 0.5,
		Stamina:       player.DefaultStaminaConfig(),
		Health:        player.DefaultHealthConfig(),
		Flashlight:    flashlight.DefaultConfig(),
		Color:         YAMLColor{Color: colorful.Color{R: 0.85, G: 0.85, B: 0.9}},
	}
}

func LoadPlayerSpec() (PlayerSpec, error) {
	spec := DefaultPlayerSpec()
	if err := LoadSpecInto(PlayerFile, &spec); err != nil {
		return PlayerSpec{}, err
	}
	if err := spec.Flashlight.Validate(); err != nil {
		return PlayerSpec{}, fmt.Errorf("prefabs: %s: %w", PlayerFile, err)
	}
	return spec, nil
}

// EnemySpec is one enemy type. Unset fields fall back to enemy.DefaultParams.
type EnemySpec struct {
	Type   string    `yaml:"type"`
	Radius float64   `yaml:"radius"`
	Script string    `yaml:"script"`
	Color  YAMLColor `yaml:"color"`

	MaxHealth float64 `yaml:"max_health"`

	Sight struct {
		Radius float64 `yaml:"radius"`
		Angle  float64 `yaml:"angle"`
	} `yaml:"sight"`
	HearingRange   float64 `yaml:"hearing_range"`
	MemoryDuration float64 `yaml:"memory_duration"`

	Speeds struct {
		Default     float64 `yaml:"default"`
		Investigate float64 `yaml:"investigate"`
		Chase       float64 `yaml:"chase"`
	} `yaml:"speeds"`

	Attack struct {
		Range        float64 `yaml:"range"`
		Damage       float64 `yaml:"damage"`
		Cooldown     float64 `yaml:"cooldown"`
		RecoverDelay float64 `yaml:"recover_delay"`
	} `yaml:"attack"`

	StunDuration float64 `yaml:"stun_duration"`
	CleanupDelay float64 `yaml:"cleanup_delay"`

	Flashlight struct {
		Affected          bool    `yaml:"affected"`
		Sensitivity       float64 `yaml:"sensitivity"`
		Reference         float64 `yaml:"reference_intensity"`
		NoticeIntensity   float64 `yaml:"notice_intensity"`
		InvestigateChance float64 `yaml:"investigate_chance"`
		InvestigateOffset float64 `yaml:"investigate_offset"`
	} `yaml:"flashlight"`

	LoudSoundThreshold float64 `yaml:"loud_sound_threshold"`
	Wander             struct {
		Radius float64 `yaml:"radius"`
		Chance float64 `yaml:"chance"`
	} `yaml:"wander"`
	ReachTolerance float64 `yaml:"reach_tolerance"`

	IdleCue struct {
		Interval float64 `yaml:"interval"`
		Chance   float64 `yaml:"chance"`
	} `yaml:"idle_cue"`
}

// DefaultEnemySpec mirrors enemy.DefaultParams.
func DefaultEnemySpec() EnemySpec {
	p := enemy.DefaultParams()
	var s EnemySpec
	s.Type = p.Type
	s.Radius = 28
	s.Color = YAMLColor{Color: colorful.Color{R: 0.8, G: 0.2, B: 0.2}}
	s.MaxHealth = p.MaxHealth
	s.Sight.Radius, s.Sight.Angle = p.SightRadius, p.SightAngle
	s.HearingRange = p.HearingRange
	s.MemoryDuration = p.MemoryDuration
	s.Speeds.Default, s.Speeds.Investigate, s.Speeds.Chase = p.DefaultSpeed, p.InvestigateSpeed, p.ChaseSpeed
	s.Attack.Range, s.Attack.Damage = p.AttackRange, p.AttackDamage
	s.Attack.Cooldown, s.Attack.RecoverDelay = p.AttackCooldown, p.AttackRecoverDelay
	s.StunDuration = p.StunDuration
	s.CleanupDelay = p.CleanupDelay
	s.Flashlight.Affected = p.AffectedByFlashlight
	s.Flashlight.Sensitivity = p.FlashlightSensitivity
	s.Flashlight.Reference = p.ReferenceIntensity
	s.Flashlight.NoticeIntensity = p.NoticeIntensity
	s.Flashlight.InvestigateChance = p.InvestigateChance
	s.Flashlight.InvestigateOffset = p.InvestigateOffset
	s.LoudSoundThreshold = p.LoudSoundThreshold
	s.Wander.Radius, s.Wander.Chance = p.WanderRadius, p.WanderChance
	s.ReachTolerance = p.ReachTolerance
	s.IdleCue.Interval, s.IdleCue.Chance = p.IdleCueInterval, p.IdleCueChance
	return s
}

func (s EnemySpec) Params() enemy.Params {
	return enemy.Params{
		Type:      s.Type,
		MaxHealth: s.MaxHealth,

		SightRadius:    s.Sight.Radius,
		SightAngle:     s.Sight.Angle,
		HearingRange:   s.HearingRange,
		MemoryDuration: s.MemoryDuration,

		DefaultSpeed:     s.Speeds.Default,
		InvestigateSpeed: s.Speeds.Investigate,
		ChaseSpeed:       s.Speeds.Chase,

		AttackRange:        s.Attack.Range,
		AttackDamage:       s.Attack.Damage,
		AttackCooldown:     s.Attack.Cooldown,
		AttackRecoverDelay: s.Attack.RecoverDelay,

		StunDuration: s.StunDuration,
		CleanupDelay: s.CleanupDelay,

		AffectedByFlashlight:  s.Flashlight.Affected,
		FlashlightSensitivity: s.Flashlight.Sensitivity,
		ReferenceIntensity:    s.Flashlight.Reference,
		NoticeIntensity:       s.Flashlight.NoticeIntensity,
		InvestigateChance:     s.Flashlight.InvestigateChance,
		InvestigateOffset:     s.Flashlight.InvestigateOffset,

		LoudSoundThreshold: s.LoudSoundThreshold,
		WanderRadius:       s.Wander.Radius,
		WanderChance:       s.Wander.Chance,
		ReachTolerance:     s.ReachTolerance,

		IdleCueInterval: s.IdleCue.Interval,
		IdleCueChance:   s.IdleCue.Chance,
	}
}

// EnemyFile maps an enemy type to its prefab file name.
func EnemyFile(typeName string) string {
	return enemyPrefix + typeName + ".yaml"
}

// EnemyTypeOf is the inverse of EnemyFile. ok is false for other prefabs.
func EnemyTypeOf(filename string) (string, bool) {
	base := filepath.Base(filepath.ToSlash(filename))
	if !strings.HasPrefix(base, enemyPrefix) || !isSpecFile(base) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(base, enemyPrefix), filepath.Ext(base)), true
}

func LoadEnemySpec(typeName string) (EnemySpec, error) {
	spec := DefaultEnemySpec()
	spec.Type = typeName
	file := EnemyFile(typeName)
	if err := LoadSpecInto(file, &spec); err != nil {
		return EnemySpec{}, err
	}
	if spec.Type != typeName {
		return EnemySpec{}, fmt.Errorf("prefabs: %s declares type %q", file, spec.Type)
	}
	if err := spec.Params().Validate(); err != nil {
		return EnemySpec{}, fmt.Errorf("prefabs: %s: %w", file, err)
	}
	return spec, nil
}

// EnemyTypes lists every enemy type available on disk or embedded.
func EnemyTypes() ([]string, error) {
	seen := map[string]struct{}{}
	embedded, err := fs.Glob(PrefabsFS, enemyPrefix+"*.yaml")
	if err != nil {
		return nil, fmt.Errorf("prefabs: list enemies: %w", err)
	}
	disk, _ := filepath.Glob(diskPrefabPath(enemyPrefix + "*.yaml"))
	for _, f := range append(embedded, disk...) {
		if t, ok := EnemyTypeOf(f); ok {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

type SpawnSpec struct {
	Type     string      `yaml:"type"`
	Position common.Vec2 `yaml:"position"`
}

type ArenaSpec struct {
	Name        string        `yaml:"name"`
	Width       float64       `yaml:"width"`
	Height      float64       `yaml:"height"`
	Walls       []common.Rect `yaml:"walls"`
	PlayerSpawn common.Vec2   `yaml:"player_spawn"`
	Enemies     []SpawnSpec   `yaml:"enemies"`
}

// Bounds returns four walls enclosing the arena, thick enough that fast
// bodies cannot tunnel through them.
func (a ArenaSpec) Bounds() []common.Rect {
	const t = 64
	return []common.Rect{
		{X: -t, Y: -t, Width: a.Width + 2*t, Height: t},
		{X: -t, Y: a.Height, Width: a.Width + 2*t, Height: t},
		{X: -t, Y: 0, Width: t, Height: a.Height},
		{X: a.Width, Y: 0, Width: t, Height: a.Height},
	}
}

func LoadArenaSpec() (ArenaSpec, error) {
	spec, err := LoadSpec[ArenaSpec](ArenaFile)
	if err != nil {
		return ArenaSpec{}, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return ArenaSpec{}, fmt.Errorf("prefabs: %s: arena size must be positive", ArenaFile)
	}
	return spec, nil
}

// YAMLColor decodes "#rrggbb" strings.
type YAMLColor struct {
	colorful.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	s := strings.TrimSpace(value.Value)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return fmt.Errorf("invalid color format: %s: %w", value.Value, err)
	}
	c.Color = col
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	return c.Hex(), nil
}
