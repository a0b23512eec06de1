package modelargs

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Model identifies a talking-head backend.
type Model string

const (
	SadTalker Model = "sadtalker"
	Hallo2    Model = "hallo2"
)

// DefaultModel is used when a request names none.
const DefaultModel = SadTalker

// Models lists the supported models in display order.
func Models() []Model {
	return []Model{SadTalker, Hallo2}
}

// ParseModel resolves a user-supplied model name.
func ParseModel(raw string) (Model, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return DefaultModel, nil
	}
	for _, m := range Models() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown model %q (supported: %s, %s)", raw, SadTalker, Hallo2)
}

// DisplayName returns the upper-cased banner label for the model.
func (m Model) DisplayName() string {
	return cases.Upper(language.Und).String(string(m))
}

// Variant identifies which entry point flavour handles a run.
type Variant string

const (
	Standard     Variant = "standard"
	Conservative Variant = "conservative"
	Diffusion    Variant = "diffusion"
)

// ConservativeEnv selects the memory-conservative SadTalker wrapper when set to "1".
const ConservativeEnv = "USE_CONSERVATIVE"

// SelectVariant picks the variant for m. Only the exact value "1" enables the
// conservative wrapper.
func SelectVariant(m Model, getenv func(string) string) Variant {
	if m == Hallo2 {
		return Diffusion
	}
	if getenv != nil && getenv(ConservativeEnv) == "1" {
		return Conservative
	}
	return Standard
}

// Inputs are the per-request values merged into a model's fixed defaults.
type Inputs struct {
	ImagePath     string
	AudioPath     string
	OutputPath    string
	CheckpointDir string
	Device        string
	Size          int
}

// InstallRemedy is the command that installs the model checkout.
func (m Model) InstallRemedy() string {
	if m == Hallo2 {
		return "bash setup_hallo2.sh"
	}
	return "git clone https://github.com/OpenTalker/SadTalker && pip install -r SadTalker/requirements.txt"
}

// CheckpointRemedy is the command that downloads the model weights.
func (m Model) CheckpointRemedy() string {
	if m == Hallo2 {
		return "bash download_hallo2_models.sh"
	}
	return "bash scripts/download_models.sh"
}
