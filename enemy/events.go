package enemy

type EventKind int

const (
	HealthChanged EventKind = iota
	StateChanged
	Died
	Spotted
	AttackLanded
)

func (k EventKind) String() string {
	switch k {
	case HealthChanged:
		return "health_changed"
	case StateChanged:
		return "state_changed"
	case Died:
		return "died"
	case Spotted:
		return "spotted"
	case AttackLanded:
		return "attack_landed"
	}
	return "unknown"
}

// Event is delivered to observers. Fields that do not apply to Kind are zero.
type Event struct {
	Kind      EventKind
	Agent     uint64
	Type      string
	Previous  State
	State     State
	Health    float64
	MaxHealth float64
	Target    Actor
	Damage    float64
}

type subscription struct {
	id int
	fn func(Event)
}

// Observer fans events out to listeners in subscription order.
type Observer struct {
	next int
	subs []subscription
}

// Subscribe adds fn and returns a function that removes it again.
func (o *Observer) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	o.next++
	id := o.next
	o.subs = append(o.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

func (o *Observer) Len() int {
	return len(o.subs)
}

func (o *Observer) publish(evt Event) {
	if len(o.subs) == 0 {
		return
	}
	subs := append([]subscription(nil), o.subs...)
	for _, s := range subs {
		s.fn(evt)
	}
}
