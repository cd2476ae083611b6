package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]("player_tag")

type EnemyTag struct{}

var EnemyTagComponent = NewComponent[EnemyTag]("enemy_tag")
