package fixture

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// settingsSchema constrains the Config section. Unknown keys are allowed.
const settingsSchema = `
#Settings: {
	Spec?:     string & != ""
	Variants?: [...string] | null
	...
}
`

// validateSettings checks a decoded Config section against settingsSchema.
func validateSettings(raw any) error {
	if _, ok := raw.(map[string]any); !ok {
		return fmt.Errorf("%s must be a mapping", KeyConfig)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(settingsSchema).LookupPath(cue.ParsePath("#Settings"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("settings schema: %w", err)
	}

	value := schema.Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError reduces a CUE error list to its first message.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%s: %w", KeyConfig, err)
	}
	return fmt.Errorf("%s: %s", KeyConfig, errs[0].Error())
}
