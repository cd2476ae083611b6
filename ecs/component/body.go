package component

// Body is a circular collider registered with the navigation world under
// the entity's id.
type Body struct {
	Radius float64
}

var BodyComponent = NewComponent[Body]("body")
