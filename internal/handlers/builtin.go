package handlers

import (
	"context"
	"log/slog"

	"github.com/hearthhub/configflow/internal/definition"
	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/pkg/api"
	"github.com/hearthhub/configflow/pkg/log"
)

// RegisterBuiltinHandlers binds the shipped handlers into the registry.
// Called once at process start; any later registration is a test-only
// override. Domains carrying a flow definition get the generic wizard;
// everything unregistered falls through to the hub proxy
func RegisterBuiltinHandlers(
	ctx context.Context, reg *engine.Registry, defs *definition.Store,
	nestAuthURL string,
) error {
	reg.Register("zigbee", NewZigbeeFactory())
	reg.Register("mqtt", NewMQTTFactory())
	reg.Register("hue", NewHueFactory())
	reg.Register("nest", NewNestFactory(nestAuthURL))

	domains, err := defs.ListDomains(ctx)
	if err != nil {
		return err
	}
	for _, domain := range domains {
		if reg.Registered(domain) {
			continue
		}
		reg.Register(domain, NewWizardFactory(defs, domain))
		slog.Info("Registered wizard handler",
			log.Domain(domain))
	}

	slog.Info("Builtin handlers registered",
		slog.Int("count", len(reg.Domains())))
	return nil
}

// Builtin lists the domains with hand-written handlers
func Builtin() []api.Domain {
	return []api.Domain{"zigbee", "mqtt", "hue", "nest"}
}
