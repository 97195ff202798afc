package action

import (
	"fmt"

	"github.com/braidcore/braid/datalog"
	"github.com/braidcore/braid/errs"
	"github.com/braidcore/braid/message"
)

// signConfiguration attests to the bootstrap Configuration (spec §4.5). The
// Configuration itself was already validated at ingest (store.verify); this
// action checks that the request's configuration and target hashes agree
// and re-runs Validate on the stored Configuration before signing.
func (c *Context) signConfiguration(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	if req.ConfigHash != req.TargetHash {
		return message.Message{}, fmt.Errorf("%w: sign_configuration request names mismatched hashes", errs.ErrInternal)
	}
	if err := cfg.Validate(); err != nil {
		return message.Message{}, err
	}
	body := message.StatementBody{
		ArtifactHash:      req.TargetHash,
		ConfigurationHash: req.ConfigHash,
	}
	return c.build(cfg, message.StatementConfigurationSigned, body, nil)
}
