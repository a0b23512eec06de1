package modelargs

import (
	"path/filepath"
	"strconv"
)

// SadTalkerArgs mirrors the argument namespace SadTalker's inference entry point reads.
// Pointer and slice fields are optional; nil means "not set".
type SadTalkerArgs struct {
	DrivenAudio        string
	SourceImage        string
	RefEyeblink        *string
	RefPose            *string
	CheckpointDir      string
	ResultDir          string
	PoseStyle          int
	BatchSize          int
	Size               int
	ExpressionScale    float64
	InputYaw           []int
	InputPitch         []int
	InputRoll          []int
	Enhancer           *string
	BackgroundEnhancer *string
	Device             string
	Face3DVis          bool
	Still              bool
	Preprocess         string
	Verbose            bool
	OldVersion         bool
	NetRecon           string
	InitPath           *string
	UseLastFC          bool
	BFMFolder          string
	BFMModel           string
	Focal              float64
	Center             float64
	CameraD            float64
	ZNear              float64
	ZFar               float64
}

// NewSadTalkerArgs fills SadTalker's fixed defaults and applies the request
// overrides. The conservative variant additionally turns on verbose logging.
func NewSadTalkerArgs(in Inputs, variant Variant) SadTalkerArgs {
	return SadTalkerArgs{
		DrivenAudio:     in.AudioPath,
		SourceImage:     in.ImagePath,
		CheckpointDir:   in.CheckpointDir,
		ResultDir:       filepath.Dir(in.OutputPath),
		PoseStyle:       0,
		BatchSize:       1,
		Size:            in.Size,
		ExpressionScale: 1.0,
		Device:          in.Device,
		Still:           true,
		Preprocess:      "crop",
		Verbose:         variant == Conservative,
		NetRecon:        "resnet50",
		BFMFolder:       "./checkpoints/BFM_Fitting/",
		BFMModel:        "BFM_model_front.mat",
		Focal:           1015,
		Center:          112,
		CameraD:         10,
		ZNear:           5,
		ZFar:            15,
	}
}

// CommandLine renders the args as inference.py flags.
func (a SadTalkerArgs) CommandLine() []string {
	args := []string{
		"--driven_audio", a.DrivenAudio,
		"--source_image", a.SourceImage,
		"--checkpoint_dir", a.CheckpointDir,
		"--result_dir", a.ResultDir,
		"--pose_style", strconv.Itoa(a.PoseStyle),
		"--batch_size", strconv.Itoa(a.BatchSize),
		"--size", strconv.Itoa(a.Size),
		"--expression_scale", formatFloat(a.ExpressionScale),
		"--preprocess", a.Preprocess,
		"--net_recon", a.NetRecon,
		"--bfm_folder", a.BFMFolder,
		"--bfm_model", a.BFMModel,
		"--focal", formatFloat(a.Focal),
		"--center", formatFloat(a.Center),
		"--camera_d", formatFloat(a.CameraD),
		"--z_near", formatFloat(a.ZNear),
		"--z_far", formatFloat(a.ZFar),
	}
	args = appendOptional(args, "--ref_eyeblink", a.RefEyeblink)
	args = appendOptional(args, "--ref_pose", a.RefPose)
	args = appendOptional(args, "--enhancer", a.Enhancer)
	args = appendOptional(args, "--background_enhancer", a.BackgroundEnhancer)
	args = appendOptional(args, "--init_path", a.InitPath)
	args = appendInts(args, "--input_yaw", a.InputYaw)
	args = appendInts(args, "--input_pitch", a.InputPitch)
	args = appendInts(args, "--input_roll", a.InputRoll)

	switches := []struct {
		flag string
		on   bool
	}{
		{"--cpu", a.Device == "cpu"},
		{"--face3dvis", a.Face3DVis},
		{"--still", a.Still},
		{"--verbose", a.Verbose},
		{"--old_version", a.OldVersion},
		{"--use_last_fc", a.UseLastFC},
	}
	for _, s := range switches {
		if s.on {
			args = append(args, s.flag)
		}
	}
	return args
}

func appendOptional(args []string, flag string, value *string) []string {
	if value == nil {
		return args
	}
	return append(args, flag, *value)
}

func appendInts(args []string, flag string, values []int) []string {
	if len(values) == 0 {
		return args
	}
	args = append(args, flag)
	for _, v := range values {
		args = append(args, strconv.Itoa(v))
	}
	return args
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
