package uniqueness

import (
	"context"
	"fmt"
	"strings"

	"github.com/msto63/formplan/foundation/core/i18n"
	"github.com/msto63/formplan/foundation/core/validation"
)

// CapUnique is the id under which the capability is registered
const CapUnique validation.CapabilityID = "validateUnique"

// MsgTaken is the message key recorded for a taken value
const MsgTaken = "validation.unique.taken"

const fallbackTaken = "This value is already taken"

// NewCapability returns validateUnique backed by store. Args: [scope],
// defaulting to the field key. The check is skipped when the field already
// has errors, so invalid values never reach the store. A store failure
// panics and surfaces as CAPABILITY_FAILED.
func NewCapability(store Store, msgs validation.Messages) validation.Capability {
	if msgs == nil {
		msgs = i18n.Default()
	}

	return func(ctx context.Context, res *validation.Result, call validation.Call) {
		v := call.Value()
		if v == nil || res.HasFieldErrors(call.Field) {
			return
		}

		scope := call.Field
		if arg, ok := call.Arg(0); ok {
			if s, isString := arg.(string); isString && s != "" {
				scope = s
			}
		}

		value := strings.TrimSpace(fmt.Sprint(v))
		taken, err := store.Exists(ctx, scope, value)
		if err != nil {
			panic(err)
		}
		if taken {
			res.AddError(call.Field, msgs.Text(ctx, MsgTaken, fallbackTaken, nil))
			return
		}
		res.SetValue(call.Field, value)
	}
}

// Register adds validateUnique backed by store to r
func Register(r *validation.Registry, store Store, msgs validation.Messages) error {
	return r.Register(CapUnique, NewCapability(store, msgs))
}
