package producer

import (
	"fmt"

	"github.com/playsync/playsync/canvas"
	"github.com/playsync/playsync/check"
	"github.com/playsync/playsync/profile"
	"github.com/samber/mo"
)

// Registry maps canvases to the producer the engine owns for them.
// It is not safe for concurrent use; the engine touches it only from its loop.
type Registry struct {
	factory   Factory
	profile   *profile.Profile
	producers map[canvas.ID]Producer
}

// NewRegistry creates an empty registry whose producers are built by factory and bound to p.
func NewRegistry(factory Factory, p *profile.Profile) *Registry {
	return &Registry{
		factory:   factory,
		profile:   p,
		producers: make(map[canvas.ID]Producer),
	}
}

// Setup builds a producer for c's current media, replacing any producer c already had.
// The producer starts over the document range with range limiting disabled.
func (r *Registry) Setup(c canvas.Canvas) (Producer, error) {
	anim, ok := c.Animation().Get()
	if !ok {
		return nil, fmt.Errorf("setup producer for canvas %s: %w", c.ID(), check.ErrNoAnimation)
	}

	p, err := r.factory.New(c.Media(), r.profile)
	if err != nil {
		return nil, fmt.Errorf("setup producer for canvas %s: %w", c.ID(), err)
	}
	if !p.Valid() {
		return nil, fmt.Errorf("setup producer for canvas %s: producer is not valid", c.ID())
	}

	r.producers[c.ID()] = p

	document := anim.DocumentRange()
	p.SetStartFrame(document.Start)
	p.SetEndFrame(document.End)
	p.SetLimited(false)

	return p, nil
}

// Get returns the producer registered for id.
func (r *Registry) Get(id canvas.ID) mo.Option[Producer] {
	p, ok := r.producers[id]
	if !ok {
		return mo.None[Producer]()
	}
	return mo.Some(p)
}

// Remove forgets the producer registered for id.
func (r *Registry) Remove(id canvas.ID) {
	delete(r.producers, id)
}

// Len is the number of registered producers.
func (r *Registry) Len() int {
	return len(r.producers)
}
