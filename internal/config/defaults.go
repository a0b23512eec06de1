package config

const (
	defaultModelsDir       = "~/.local/share/atenea"
	defaultAudioDir        = "~/.local/share/atenea/audio"
	defaultPythonBinary    = "python3"
	defaultSadTalkerEntry  = "inference.py"
	defaultHallo2Entry     = "scripts/inference.py"
	defaultHallo2Config    = "configs/inference/default.yaml"
	defaultCheckpointsName = "checkpoints"
	defaultBackend         = BackendProcess
	defaultOutputTailLines = 40
	defaultTTSBaseURL      = "https://api.openai.com/v1"
	defaultTTSModel        = "tts-1"
	defaultTTSVoice        = "nova"
	defaultTTSTimeout      = 120
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Dispatch backend identifiers.
const (
	BackendProcess   = "process"
	BackendInProcess = "inprocess"
)

// Default returns a Config populated with repository defaults. Model roots and
// checkpoint directories are derived from Paths.ModelsDir during normalization
// when left empty. TTS model and voice stay empty so TTS_MODEL and TTS_VOICE
// can fill them before the built-in defaults apply.
func Default() Config {
	return Config{
		Paths: Paths{
			ModelsDir: defaultModelsDir,
			AudioDir:  defaultAudioDir,
		},
		Python: Python{
			Binary: defaultPythonBinary,
		},
		SadTalker: SadTalker{
			Entry: defaultSadTalkerEntry,
		},
		Hallo2: Hallo2{
			Entry: defaultHallo2Entry,
		},
		Dispatch: Dispatch{
			Backend:         defaultBackend,
			OutputTailLines: defaultOutputTailLines,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			TimeoutSeconds: defaultTTSTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
