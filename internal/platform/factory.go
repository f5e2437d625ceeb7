package platform

import (
	"github.com/aretw0/receipt/pkg/core"
	"github.com/aretw0/receipt/pkg/novelty"
)

// New opens the log and returns a ready service.
//
//	svc, err := receipt.New("./data", receipt.WithAutoInit(true))
func New(uri string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, err := initRepository(uri, o)
	if err != nil {
		return nil, err
	}

	composer := o.composer
	if composer == nil {
		regOpts := []novelty.Option{}
		if p, ok := o.config["bonus_probability"].(float64); ok {
			regOpts = append(regOpts, novelty.WithBonusProbability(p))
		}
		composer = novelty.NewRegister(regOpts...)
	}

	svcOpts := []core.ServiceOption{core.WithComposer(composer)}
	if o.logger != nil {
		svcOpts = append(svcOpts, core.WithServiceLogger(o.logger))
	}
	return core.NewService(repo, svcOpts...), nil
}
