package producer

import (
	"github.com/playsync/playsync/log"
	"github.com/playsync/playsync/media"
	"github.com/playsync/playsync/profile"
	"github.com/samber/mo"
)

// DefaultFactory builds File producers for media references and Counter producers otherwise.
type DefaultFactory struct {
	// Prober, when set, attaches probed frame information to file producers.
	Prober *media.Prober
}

func (d *DefaultFactory) New(ref mo.Option[media.Ref], p *profile.Profile) (Producer, error) {
	r, ok := ref.Get()
	if !ok {
		return NewCounter(p), nil
	}

	file, err := NewFile(r, p)
	if err != nil {
		return nil, err
	}

	if d.Prober != nil {
		info, err := d.Prober.Probe(r)
		if err != nil {
			log.Debugf("media %s: no probe info: %v", r, err)
		} else {
			file.info = mo.Some(info)
		}
	}

	return file, nil
}
